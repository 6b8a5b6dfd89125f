package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	shared "github.com/fitai/fitai-server/pkg"
	"github.com/fitai/fitai-server/pkg/types"
)

// Client is a typed view over the Firestore collections the server uses.
type Client struct {
	fs *firestore.Client
}

func NewClient(fs *firestore.Client) *Client {
	return &Client{fs: fs}
}

func (c *Client) Users() *Collection[types.UserProfile] {
	return &Collection[types.UserProfile]{
		ref:  c.fs.Collection(shared.CollectionUsers),
		to:   ProfileToFirestore,
		from: FirestoreToProfile,
	}
}

func (c *Client) Executions() *Collection[types.ExecutionRecord] {
	return &Collection[types.ExecutionRecord]{
		ref:  c.fs.Collection(shared.CollectionExecutions),
		to:   ExecutionToFirestore,
		from: FirestoreToExecution,
	}
}

// WorkoutPlans stores plans as structs via their firestore tags.
func (c *Client) WorkoutPlans() *Collection[types.StoredWorkoutPlan] {
	return &Collection[types.StoredWorkoutPlan]{ref: c.fs.Collection(shared.CollectionUserWorkouts)}
}

func (c *Client) Completions() *firestore.CollectionRef {
	return c.fs.Collection(shared.CollectionWorkoutCompletions)
}

// Collection converts between T and Firestore documents. Without
// converters values are stored as structs.
type Collection[T any] struct {
	ref  *firestore.CollectionRef
	to   func(*T) map[string]interface{}
	from func(map[string]interface{}) *T
}

func (c *Collection[T]) Doc(id string) *Document[T] {
	return &Document[T]{ref: c.ref.Doc(id), coll: c}
}

type Document[T any] struct {
	ref  *firestore.DocumentRef
	coll *Collection[T]
}

// Get reads the document. A missing document returns (nil, nil).
func (d *Document[T]) Get(ctx context.Context) (*T, error) {
	snap, err := d.ref.Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if d.coll.from != nil {
		return d.coll.from(snap.Data()), nil
	}
	var v T
	if err := snap.DataTo(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Set overwrites the document.
func (d *Document[T]) Set(ctx context.Context, v *T) error {
	var data interface{} = v
	if d.coll.to != nil {
		data = d.coll.to(v)
	}
	_, err := d.ref.Set(ctx, data)
	return err
}

// Merge writes the given fields, creating the document if needed.
func (d *Document[T]) Merge(ctx context.Context, data map[string]interface{}) error {
	_, err := d.ref.Set(ctx, data, firestore.MergeAll)
	return err
}

// Update applies field updates to an existing document.
func (d *Document[T]) Update(ctx context.Context, updates []firestore.Update) error {
	_, err := d.ref.Update(ctx, updates)
	return err
}

// Updates converts a flat map into Firestore updates.
func Updates(data map[string]interface{}) []firestore.Update {
	out := make([]firestore.Update, 0, len(data))
	for k, v := range data {
		out = append(out, firestore.Update{Path: k, Value: v})
	}
	return out
}

// IsNotFound reports whether err is a Firestore missing-document error.
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
