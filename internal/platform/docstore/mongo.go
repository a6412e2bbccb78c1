package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore maps each collection to a Mongo collection and the document id
// to _id.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// ConnectMongo dials uri and pings the server before returning.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Client, *MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, NewMongoStore(client.Database(database)), nil
}

func (s *MongoStore) Create(ctx context.Context, collection string, doc any, id string) (string, error) {
	obj, err := toObject(doc)
	if err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.New().String()
	}
	obj["_id"] = id
	if _, err := s.db.Collection(collection).InsertOne(ctx, bson.M(obj)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%s/%s: %w", collection, id, ErrAlreadyExists)
		}
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return id, nil
}

func (s *MongoStore) Read(ctx context.Context, collection, id string, out any) error {
	var m bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s/%s: %w", collection, id, err)
	}
	delete(m, "_id")
	b, err := mongoJSON(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	patch, err := toObject(partial)
	if err != nil {
		return err
	}
	delete(patch, "_id")
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(patch)})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var mongoOps = map[Op]string{
	OpEq: "$eq", OpNe: "$ne", OpLt: "$lt", OpLte: "$lte", OpGt: "$gt", OpGte: "$gte",
}

func (s *MongoStore) Query(ctx context.Context, collection string, q Query) (*Page, error) {
	if err := validateQuery(collection, &q); err != nil {
		return nil, err
	}
	filter, err := mongoFilter(q)
	if err != nil {
		return nil, err
	}

	sortDir := 1
	if q.Order != nil && q.Order.Desc {
		sortDir = -1
	}
	sortSpec := bson.D{{Key: "_id", Value: sortDir}}
	if q.Order != nil {
		sortSpec = bson.D{{Key: q.Order.Field, Value: sortDir}, {Key: "_id", Value: sortDir}}
	}
	opts := options.Find().SetSort(sortSpec).SetLimit(int64(q.Limit + 1))

	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	page := &Page{}
	var lastID string
	var lastKey json.RawMessage
	for cur.Next(ctx) {
		var m bson.M
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		if len(page.Docs) == q.Limit {
			page.Next = encodeCursor(lastKey, lastID)
			break
		}
		id, _ := m["_id"].(string)
		delete(m, "_id")
		data, err := mongoJSON(m)
		if err != nil {
			return nil, err
		}
		page.Docs = append(page.Docs, Doc{ID: id, Data: data})
		lastID = id
		lastKey = nil
		if q.Order != nil {
			var obj map[string]any
			_ = json.Unmarshal(data, &obj)
			if v, ok := lookup(obj, splitField(q.Order.Field)); ok {
				lastKey, _ = json.Marshal(v)
			}
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return page, nil
}

// mongoJSON renders a decoded document as relaxed extended JSON, which is
// plain JSON for the value kinds this package writes.
func mongoJSON(m bson.M) ([]byte, error) {
	return bson.MarshalExtJSON(m, false, false)
}

func mongoFilter(q Query) (bson.M, error) {
	conds := bson.A{}
	for _, f := range q.Filters {
		v, err := normalize(f.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: filter %s: %v", ErrInvalidQuery, f.Field, err)
		}
		cond := bson.M{mongoOps[f.Op]: v}
		if f.Op == OpNe {
			// missing fields never match, as in the other backends
			cond["$exists"] = true
		}
		conds = append(conds, bson.M{f.Field: cond})
	}

	c, err := decodeCursor(q.Cursor)
	if err != nil {
		return nil, err
	}
	if c != nil {
		cmp := "$gt"
		if q.Order != nil && q.Order.Desc {
			cmp = "$lt"
		}
		if q.Order == nil {
			conds = append(conds, bson.M{"_id": bson.M{cmp: c.ID}})
		} else {
			key, err := c.keyValue()
			if err != nil {
				return nil, err
			}
			conds = append(conds, bson.M{"$or": bson.A{
				bson.M{q.Order.Field: bson.M{cmp: key}},
				bson.M{q.Order.Field: key, "_id": bson.M{cmp: c.ID}},
			}})
		}
	}

	if len(conds) == 0 {
		return bson.M{}, nil
	}
	return bson.M{"$and": conds}, nil
}
