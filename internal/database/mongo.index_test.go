package database

import (
	"testing"

	analyticsmodels "barfer_analytics/internal/api/analytics/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseIndexTag(t *testing.T) {
	cfgs := parseIndexTag("single:1,order:-1;compound:status_createdAt")
	require.Len(t, cfgs, 2)
	assert.Equal(t, "1", cfgs[0]["single"])
	assert.Equal(t, -1, parseOrder(cfgs[0]))
	assert.Equal(t, "status_createdAt", cfgs[1]["compound"])
	assert.Equal(t, 1, parseOrder(cfgs[1]))
}

func TestIndexSpecs_Order(t *testing.T) {
	specs := IndexSpecs(&analyticsmodels.Order{})

	byName := map[string]IndexSpec{}
	for _, s := range specs {
		byName[s.Name] = s
	}

	require.Contains(t, byName, "createdAt_single")
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, byName["createdAt_single"].Keys)

	require.Contains(t, byName, "orderType_single")
	assert.True(t, byName["orderType_single"].Sparse)

	require.Contains(t, byName, "status_createdAt")
	assert.Equal(t, bson.D{
		{Key: "status", Value: 1},
		{Key: "createdAt", Value: -1},
	}, byName["status_createdAt"].Keys)

	// compound luôn nằm sau index đơn
	assert.Equal(t, "status_createdAt", specs[len(specs)-1].Name)
}

func TestSameKeys(t *testing.T) {
	keys := bson.D{{Key: "createdAt", Value: -1}}
	assert.True(t, sameKeys(bson.M{"key": bson.M{"createdAt": int32(-1)}}, keys))
	assert.False(t, sameKeys(bson.M{"key": bson.M{"createdAt": int32(1)}}, keys))
	assert.False(t, sameKeys(bson.M{"key": bson.M{"createdAt": int32(-1), "status": int32(1)}}, keys))
	assert.False(t, sameKeys(bson.M{}, keys))
}
