package driver

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// MongoDriver reads model documents from MongoDB. A Selection source is
// "collection" (database taken from the URI) or "database.collection".
type MongoDriver struct {
	uri string

	mu     sync.Mutex
	client *mongo.Client
}

func NewMongoDriver(uri string) *MongoDriver {
	return &MongoDriver{uri: uri}
}

func (d *MongoDriver) Name() string {
	return "mongo"
}

func (d *MongoDriver) connect(ctx context.Context) (*mongo.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(d.uri))
		if err != nil {
			return nil, err
		}
		d.client = client
	}
	return d.client, nil
}

func (d *MongoDriver) Ping(ctx context.Context) error {
	client, err := d.connect(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, nil)
}

func (d *MongoDriver) Fetch(ctx context.Context, sel Selection) ([]Record, error) {
	if err := validateSelection(sel); err != nil {
		return nil, err
	}
	if len(sel.IDs) == 0 {
		return nil, nil
	}

	dbName, collName, err := d.namespace(sel.Source)
	if err != nil {
		return nil, err
	}
	client, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}

	filter := bson.M{sel.Key: bson.M{"$in": idCandidates(sel.IDs)}}
	opts := options.Find().SetSort(bson.D{{Key: sel.Key, Value: 1}})
	cursor, err := client.Database(dbName).Collection(collName).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var records []Record
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode failed: %w", err)
		}
		rec := make(Record, len(doc))
		for k, v := range doc {
			rec[k] = normalize(v)
		}
		records = append(records, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return records, nil
}

func (d *MongoDriver) namespace(source string) (db, coll string, err error) {
	if before, after, ok := strings.Cut(source, "."); ok {
		return before, after, nil
	}
	cs, err := connstring.ParseAndValidate(d.uri)
	if err != nil {
		return "", "", fmt.Errorf("parse mongo uri: %w", err)
	}
	if cs.Database == "" {
		return "", "", fmt.Errorf("collection %q needs a database: set it in the URI or use db.collection", source)
	}
	return cs.Database, source, nil
}

// idCandidates matches IDs stored as strings, integers or ObjectIDs.
func idCandidates(ids []string) bson.A {
	out := make(bson.A, 0, len(ids)*2)
	for _, id := range ids {
		out = append(out, id)
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			out = append(out, n)
			if n >= math.MinInt32 && n <= math.MaxInt32 {
				out = append(out, int32(n))
			}
		}
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

// normalize converts BSON-specific values to plain Go values.
func normalize(v any) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.Decimal128:
		return val.String()
	case int32:
		return int64(val)
	case bson.M, bson.D, bson.A:
		b, err := bson.MarshalExtJSON(bson.M{"v": val}, false, false)
		if err != nil {
			return fmt.Sprint(val)
		}
		// Strip the {"v": ...} wrapper.
		s := string(b)
		return strings.TrimSuffix(strings.TrimPrefix(s, `{"v":`), "}")
	}
	return v
}

func (d *MongoDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		err := d.client.Disconnect(context.Background())
		d.client = nil
		return err
	}
	return nil
}
