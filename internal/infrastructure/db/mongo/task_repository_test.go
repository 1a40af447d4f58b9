package mongo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskmanager/task-api/internal/core/ports"
)

func TestBuildTaskFind_AlwaysScopesToOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	done := true

	cases := []struct {
		name       string
		query      ports.TaskQuery
		wantFilter bson.D
	}{
		{"no criteria", ports.TaskQuery{}, bson.D{{Key: "owner", Value: owner}}},
		{"completed", ports.TaskQuery{Completed: &done}, bson.D{{Key: "owner", Value: owner}, {Key: "completed", Value: true}}},
		{"sort only", ports.TaskQuery{SortField: "owner", SortDesc: true}, bson.D{{Key: "owner", Value: owner}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			filter, _ := buildTaskFind(owner, tc.query)
			if diff := cmp.Diff(tc.wantFilter, filter); diff != "" {
				t.Fatalf("unexpected filter (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildTaskFind_Options(t *testing.T) {
	owner := primitive.NewObjectID()

	_, opts := buildTaskFind(owner, ports.TaskQuery{SortField: "id", SortDesc: true, Limit: 5, Skip: 10})
	require.NotNil(t, opts.Limit)
	require.NotNil(t, opts.Skip)
	assert.Equal(t, int64(5), *opts.Limit)
	assert.Equal(t, int64(10), *opts.Skip)
	assert.Equal(t, bson.D{{Key: "_id", Value: -1}}, opts.Sort)

	_, opts = buildTaskFind(owner, ports.TaskQuery{SortField: "description"})
	assert.Equal(t, bson.D{{Key: "description", Value: 1}}, opts.Sort)
	assert.Nil(t, opts.Limit)
	assert.Nil(t, opts.Skip)
}

func TestOwnedTaskFilter(t *testing.T) {
	owner := primitive.NewObjectID()
	id := primitive.NewObjectID()

	filter, ok := ownedTaskFilter(owner.Hex(), id.Hex())
	require.True(t, ok)
	assert.Equal(t, bson.M{"_id": id, "owner": owner}, filter)

	_, ok = ownedTaskFilter(owner.Hex(), "not-an-id")
	assert.False(t, ok)
}
