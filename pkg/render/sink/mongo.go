package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/capmap/pkg/render"
)

// ErrDrawingNotFound is returned by [LoadDrawing] when no drawing has the
// requested name.
var ErrDrawingNotFound = errors.New("drawing not found")

// Mongo is a surface that upserts its [Drawing] into a collection. The save
// path becomes the document _id, so saving twice to the same path replaces
// the earlier drawing.
type Mongo struct {
	*canvas
	coll *mongo.Collection
}

// NewMongo returns an opener for surfaces stored in coll.
func NewMongo(coll *mongo.Collection) render.Opener {
	return render.OpenerFunc(func(_ context.Context, template string) (render.Surface, error) {
		return &Mongo{canvas: newCanvas(template), coll: coll}, nil
	})
}

// Save upserts the drawing under path.
func (m *Mongo) Save(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("mongo surfaces need a drawing name")
	}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": path}, m.drawing(path), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert drawing %q: %w", path, err)
	}
	return nil
}

// LoadDrawing fetches the drawing saved under name.
func LoadDrawing(ctx context.Context, coll *mongo.Collection, name string) (Drawing, error) {
	var d Drawing
	err := coll.FindOne(ctx, bson.M{"_id": name}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Drawing{}, fmt.Errorf("%w: %q", ErrDrawingNotFound, name)
	}
	if err != nil {
		return Drawing{}, fmt.Errorf("find drawing %q: %w", name, err)
	}
	return d, nil
}

// ConnectMongo connects to uri, checks the server is reachable and returns
// the named collection. Callers disconnect via coll.Database().Client().
func ConnectMongo(ctx context.Context, uri, database, collection string) (*mongo.Collection, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping %s: %w", uri, err)
	}
	return client.Database(database).Collection(collection), nil
}
