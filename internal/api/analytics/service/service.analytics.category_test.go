package analyticssvc

import (
	"testing"

	"barfer_analytics/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestClassifyProduct_EveryRule(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"BOX PERRO POLLO 5KG", "PERRO POLLO"},
		{"Pollo para Perro", "PERRO POLLO"},
		{"BOX PERRO VACA", "PERRO VACA"},
		{"box perro cerdo", "PERRO CERDO"},
		{"BOX PERRO CORDERO", "PERRO CORDERO"},
		{"BOX GATO POLLO", "GATO POLLO"},
		{"BOX GATO VACA", "GATO VACA"},
		{"BOX GATO CORDERO", "GATO CORDERO"},
		{"BOX PERRO MIX", "PERRO"},
		{"Gato Cerdo", "GATO"},
		{"BIG DOG (15KG)", "BIG DOG"},
		{"HUESOS CARNOSOS 5KG", "HUESOS CARNOSOS"},
		{"Complementos Aceite de Salmón", "COMPLEMENTOS"},
		{"Bandana", CategoryOther},
		{"", CategoryOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyProduct(tc.name))
		})
	}
}

func TestClassifyProduct_CombinedRuleWins(t *testing.T) {
	// chứa cả "perro" và "pollo": luật kết hợp phải thắng luật chỉ có "perro"
	assert.Equal(t, "PERRO POLLO", ClassifyProduct("perro adulto sabor POLLO"))
	// "perro" đứng trước "huesos" trong thứ tự luật
	assert.Equal(t, "PERRO", ClassifyProduct("huesos para perro"))
}

func TestCategoryRules_Order(t *testing.T) {
	index := map[string]int{}
	for i, r := range CategoryRules {
		index[r.Category] = i
	}
	for _, combined := range []string{"PERRO POLLO", "PERRO VACA", "PERRO CERDO", "PERRO CORDERO"} {
		assert.Less(t, index[combined], index["PERRO"])
	}
	for _, combined := range []string{"GATO POLLO", "GATO VACA", "GATO CORDERO"} {
		assert.Less(t, index[combined], index["GATO"])
	}
	assert.Less(t, index["GATO"], index["BIG DOG"])
}

func TestCategoryExpr_MirrorsRules(t *testing.T) {
	expr := categoryExpr("items.name").(bson.M)
	sw := expr["$switch"].(bson.M)
	assert.Equal(t, CategoryOther, sw["default"])

	branches := sw["branches"].(bson.A)
	require.Len(t, branches, len(CategoryRules))

	for i, b := range branches {
		branch := b.(bson.M)
		assert.Equal(t, CategoryRules[i].Category, branch["then"])
		conds := branch["case"].(bson.M)["$and"].(bson.A)
		assert.Len(t, conds, len(CategoryRules[i].Terms))
	}

	first := branches[0].(bson.M)["case"].(bson.M)["$and"].(bson.A)[0].(bson.M)
	assert.Equal(t, bson.M{"$regexMatch": bson.M{
		"input":   pipeline.IfNull("$items.name", ""),
		"regex":   "perro",
		"options": "i",
	}}, first)

	// "big dog" chứa khoảng trắng, không có ký tự cần escape
	bigDog := branches[9].(bson.M)["case"].(bson.M)["$and"].(bson.A)[0].(bson.M)
	assert.Equal(t, "big dog", bigDog["$regexMatch"].(bson.M)["regex"])
}
