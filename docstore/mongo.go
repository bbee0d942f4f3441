// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"context"
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/pkg/errors"
)

type mongoDocument struct {
	ID        string    `bson:"_id"`
	Version   int64     `bson:"version"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStore keeps documents in MongoDB collections of the same name.
type MongoStore struct {
	session  *mgo.Session
	database string
}

// OpenMongoStore dials the server named by url. An empty database uses the
// one from the connection string.
func OpenMongoStore(url, database string) (*MongoStore, error) {
	dialInfo, err := mgo.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse mongo url")
	}
	dialInfo.Timeout = 10 * time.Second

	session, err := mgo.DialWithInfo(dialInfo)
	if err != nil {
		return nil, errors.Wrap(err, "dial mongo")
	}
	session.SetMode(mgo.Primary, false)
	session.SetSafe(&mgo.Safe{WMode: "majority"})

	return &MongoStore{session: session, database: database}, nil
}

func (s *MongoStore) collection(name string) (*mgo.Collection, func()) {
	session := s.session.Copy()
	return session.DB(s.database).C(name), session.Close
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	c, done := s.collection(collection)
	defer done()

	var doc mongoDocument
	err := c.FindId(id).One(&doc)
	if err == mgo.ErrNotFound {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, errors.Wrapf(err, "get %s/%s", collection, id)
	}
	return doc.toDocument(), nil
}

func (s *MongoStore) Create(ctx context.Context, collection, id string, body []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	c, done := s.collection(collection)
	defer done()

	doc := mongoDocument{ID: id, Version: 1, Body: string(body), UpdatedAt: time.Now().UTC()}
	err := c.Insert(doc)
	if mgo.IsDup(err) {
		return Document{}, ErrAlreadyExists
	}
	if err != nil {
		return Document{}, errors.Wrapf(err, "create %s/%s", collection, id)
	}
	return doc.toDocument(), nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, body []byte, expectedVersion int64) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	c, done := s.collection(collection)
	defer done()

	now := time.Now().UTC()
	err := c.Update(
		bson.M{"_id": id, "version": expectedVersion},
		bson.M{
			"$set": bson.M{"body": string(body), "updatedAt": now},
			"$inc": bson.M{"version": 1},
		},
	)
	if err == mgo.ErrNotFound {
		// The selector includes the version, so tell missing from stale.
		n, cerr := c.FindId(id).Count()
		if cerr != nil {
			return Document{}, errors.Wrapf(cerr, "update %s/%s", collection, id)
		}
		if n == 0 {
			return Document{}, ErrNotFound
		}
		return Document{}, ErrConflict
	}
	if err != nil {
		return Document{}, errors.Wrapf(err, "update %s/%s", collection, id)
	}

	return Document{ID: id, Version: expectedVersion + 1, Body: append([]byte(nil), body...), UpdatedAt: now}, nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, done := s.collection(collection)
	defer done()

	err := c.RemoveId(id)
	if err == mgo.ErrNotFound {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrapf(err, "delete %s/%s", collection, id)
	}
	return nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, done := s.collection(collection)
	defer done()

	var found []mongoDocument
	if err := c.Find(nil).Sort("_id").All(&found); err != nil {
		return nil, errors.Wrapf(err, "query %s", collection)
	}

	docs := make([]Document, len(found))
	for i, d := range found {
		docs[i] = d.toDocument()
	}
	return ApplyQuery(docs, q)
}

func (s *MongoStore) Close() error {
	s.session.Close()
	return nil
}

func (d mongoDocument) toDocument() Document {
	return Document{ID: d.ID, Version: d.Version, Body: []byte(d.Body), UpdatedAt: d.UpdatedAt}
}
