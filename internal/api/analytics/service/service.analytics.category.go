package analyticssvc

import (
	"regexp"
	"strings"

	"barfer_analytics/internal/pipeline"
)

// CategoryOther là nhóm mặc định khi tên sản phẩm không khớp luật nào
const CategoryOther = "OTROS"

// CategoryRule gán Category khi tên sản phẩm chứa tất cả Terms (không phân biệt hoa thường)
type CategoryRule struct {
	Category string
	Terms    []string
}

// CategoryRules xét theo thứ tự, luật khớp đầu tiên thắng.
// Luật động vật + protein đứng trước luật chỉ có động vật, sau đó mới tới các nhóm khác.
var CategoryRules = []CategoryRule{
	{Category: "PERRO POLLO", Terms: []string{"perro", "pollo"}},
	{Category: "PERRO VACA", Terms: []string{"perro", "vaca"}},
	{Category: "PERRO CERDO", Terms: []string{"perro", "cerdo"}},
	{Category: "PERRO CORDERO", Terms: []string{"perro", "cordero"}},
	{Category: "GATO POLLO", Terms: []string{"gato", "pollo"}},
	{Category: "GATO VACA", Terms: []string{"gato", "vaca"}},
	{Category: "GATO CORDERO", Terms: []string{"gato", "cordero"}},
	{Category: "PERRO", Terms: []string{"perro"}},
	{Category: "GATO", Terms: []string{"gato"}},
	{Category: "BIG DOG", Terms: []string{"big dog"}},
	{Category: "HUESOS CARNOSOS", Terms: []string{"huesos"}},
	{Category: "COMPLEMENTOS", Terms: []string{"complement"}},
}

// ClassifyProduct trả về nhóm của sản phẩm theo CategoryRules
func ClassifyProduct(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range CategoryRules {
		if matchesAll(lower, rule.Terms) {
			return rule.Category
		}
	}
	return CategoryOther
}

func matchesAll(lower string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(lower, strings.ToLower(t)) {
			return false
		}
	}
	return true
}

// categoryExpr là $switch tương đương ClassifyProduct, chạy trong database
func categoryExpr(field string) any {
	input := pipeline.IfNull(pipeline.Field(field), "")
	branches := make([]pipeline.Branch, 0, len(CategoryRules))
	for _, rule := range CategoryRules {
		conds := make([]any, 0, len(rule.Terms))
		for _, t := range rule.Terms {
			conds = append(conds, pipeline.RegexMatch(input, regexp.QuoteMeta(t), "i"))
		}
		branches = append(branches, pipeline.Branch{Case: pipeline.And(conds...), Then: rule.Category})
	}
	return pipeline.Switch(branches, CategoryOther)
}
