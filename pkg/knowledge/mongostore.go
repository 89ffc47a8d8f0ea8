package knowledge

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// MongoStore is a Store backed by a MongoDB collection per table name.
type MongoStore struct {
	client *mongo.Client
	dbName string
}

// NewMongoStore connects to uri and selects database dbName.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("knowledge: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("knowledge: mongo ping: %w", err)
	}
	return &MongoStore{client: client, dbName: dbName}, nil
}

func (s *MongoStore) Lookup(ctx context.Context, table string, where map[string]data.DataValue) ([]KnowledgeRow, error) {
	filter := bson.M{}
	for _, col := range whereColumns(where) {
		filter[col] = bsonScalarOf(where[col])
	}
	coll := s.client.Database(s.dbName).Collection(table)
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("knowledge: lookup %s: %w", table, err)
	}
	defer cur.Close(ctx)

	var out []KnowledgeRow
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		row := make(KnowledgeRow, len(doc))
		for k, v := range doc {
			row[k] = dataValueOfBSON(v)
		}
		out = append(out, row)
	}
	return out, cur.Err()
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func bsonScalarOf(v data.DataValue) any {
	switch v.Kind {
	case data.KindBool:
		return v.Bool
	case data.KindInteger:
		return v.Integer
	case data.KindFloat:
		return v.Float
	case data.KindChars:
		return v.Chars
	case data.KindBytes:
		return v.Bytes
	case data.KindTime:
		return v.Time
	default:
		return nil
	}
}

func dataValueOfBSON(v any) data.DataValue {
	switch t := v.(type) {
	case nil:
		return data.Ignore()
	case bool:
		return data.Bool(t)
	case int32:
		return data.Integer(int64(t))
	case int64:
		return data.Integer(t)
	case float64:
		return data.Float(t)
	case string:
		return data.Chars(t)
	case primitive.DateTime:
		return data.TimeVal(t.Time())
	default:
		return data.Chars(fmt.Sprintf("%v", t))
	}
}
