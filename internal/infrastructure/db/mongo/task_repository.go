package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const collectionTasks = "tasks"

// TaskRepository implements ports.TaskRepository using MongoDB. Every query
// it issues carries the owner in its filter.
type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

type mongoTask struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Description string             `bson:"description"`
	Completed   bool               `bson:"completed"`
	Owner       primitive.ObjectID `bson:"owner"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (m *mongoTask) toDomain() *domain.Task {
	return &domain.Task{
		ID:          m.ID.Hex(),
		Description: m.Description,
		Completed:   m.Completed,
		Owner:       m.Owner.Hex(),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

// Create inserts a new task document.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	owner, err := parseID(t.Owner)
	if err != nil {
		return nil, fmt.Errorf("task owner: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoTask{
		ID:          primitive.NewObjectID(),
		Description: t.Description,
		Completed:   t.Completed,
		Owner:       owner,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByOwner lists the owner's tasks matching q.
func (r *TaskRepository) FindByOwner(ctx context.Context, ownerID string, q ports.TaskQuery) ([]*domain.Task, error) {
	owner, err := parseID(ownerID)
	if err != nil {
		return []*domain.Task{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, opts := buildTaskFind(owner, q)
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cur.Close(ctx)

	tasks := make([]*domain.Task, 0)
	for cur.Next(ctx) {
		var mt mongoTask
		if err := cur.Decode(&mt); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		tasks = append(tasks, mt.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// FindOne retrieves a single task by id, restricted to ownerID.
func (r *TaskRepository) FindOne(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	filter, ok := ownedTaskFilter(ownerID, taskID)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mt mongoTask
	if err := r.col.FindOne(ctx, filter).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return mt.toDomain(), nil
}

// Update applies upd to the owned task and returns the new version.
func (r *TaskRepository) Update(ctx context.Context, ownerID, taskID string, upd domain.TaskUpdate) (*domain.Task, error) {
	filter, ok := ownedTaskFilter(ownerID, taskID)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Completed != nil {
		set["completed"] = *upd.Completed
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mt mongoTask
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return mt.toDomain(), nil
}

// Delete removes the owned task and returns it as it was.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	filter, ok := ownedTaskFilter(ownerID, taskID)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mt mongoTask
	if err := r.col.FindOneAndDelete(ctx, filter).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("delete task: %w", err)
	}
	return mt.toDomain(), nil
}

// DeleteByOwner removes all tasks owned by ownerID.
func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	owner, err := parseID(ownerID)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"owner": owner})
	if err != nil {
		return 0, fmt.Errorf("delete tasks by owner: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the owner-prefixed indexes used by list queries.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "completed", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// buildTaskFind translates q into a filter and find options. The owner
// condition is always the base of the filter; nothing in q can remove it.
func buildTaskFind(owner primitive.ObjectID, q ports.TaskQuery) (bson.D, *options.FindOptions) {
	filter := bson.D{{Key: "owner", Value: owner}}
	if q.Completed != nil {
		filter = append(filter, bson.E{Key: "completed", Value: *q.Completed})
	}

	opts := options.Find()
	if q.SortField != "" {
		dir := 1
		if q.SortDesc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: sortKey(q.SortField), Value: dir}})
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	return filter, opts
}

// sortKey maps the public id name onto the stored one; every other field is
// passed through as given.
func sortKey(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

func ownedTaskFilter(ownerID, taskID string) (bson.M, bool) {
	owner, err := parseID(ownerID)
	if err != nil {
		return nil, false
	}
	id, err := parseID(taskID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": id, "owner": owner}, true
}
