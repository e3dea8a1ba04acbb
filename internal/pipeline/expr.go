package pipeline

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Field trả về tham chiếu field "$path". Path đã có "$" được giữ nguyên.
func Field(path string) string {
	if strings.HasPrefix(path, "$") {
		return path
	}
	return "$" + path
}

// ===== Accumulators =====

func Sum(expr any) bson.M      { return bson.M{"$sum": expr} }
func Count() bson.M            { return bson.M{"$sum": 1} }
func Avg(expr any) bson.M      { return bson.M{"$avg": expr} }
func AddToSet(expr any) bson.M { return bson.M{"$addToSet": expr} }
func Push(expr any) bson.M     { return bson.M{"$push": expr} }
func Min(expr any) bson.M      { return bson.M{"$min": expr} }
func Max(expr any) bson.M      { return bson.M{"$max": expr} }
func First(expr any) bson.M    { return bson.M{"$first": expr} }

// ===== Expressions =====

// IfNull trả về fallback khi expr null hoặc thiếu
func IfNull(expr, fallback any) bson.M {
	return bson.M{"$ifNull": bson.A{expr, fallback}}
}

// Cond là if/then/else
func Cond(cond, then, otherwise any) bson.M {
	return bson.M{"$cond": bson.A{cond, then, otherwise}}
}

func Eq(a, b any) bson.M  { return bson.M{"$eq": bson.A{a, b}} }
func Gt(a, b any) bson.M  { return bson.M{"$gt": bson.A{a, b}} }
func Gte(a, b any) bson.M { return bson.M{"$gte": bson.A{a, b}} }

// In kiểm tra value có trong mảng arr
func In(value, arr any) bson.M {
	return bson.M{"$in": bson.A{value, arr}}
}

// Multiply nhân các biểu thức
func Multiply(exprs ...any) bson.M {
	return bson.M{"$multiply": bson.A(exprs)}
}

// Size là số phần tử của mảng
func Size(expr any) bson.M {
	return bson.M{"$size": expr}
}

// RegexMatch so khớp chuỗi; options ví dụ "i" để không phân biệt hoa thường
func RegexMatch(input any, regex, options string) bson.M {
	m := bson.M{"input": input, "regex": regex}
	if options != "" {
		m["options"] = options
	}
	return bson.M{"$regexMatch": m}
}

func And(exprs ...any) bson.M { return bson.M{"$and": bson.A(exprs)} }
func Or(exprs ...any) bson.M  { return bson.M{"$or": bson.A(exprs)} }

// Branch là một nhánh của $switch
type Branch struct {
	Case any
	Then any
}

// Switch chọn nhánh đầu tiên có Case đúng, không có thì trả về def
func Switch(branches []Branch, def any) bson.M {
	arr := make(bson.A, 0, len(branches))
	for _, b := range branches {
		arr = append(arr, bson.M{"case": b.Case, "then": b.Then})
	}
	return bson.M{"$switch": bson.M{"branches": arr, "default": def}}
}

// DatePart lấy một phần của ngày ("$year", "$month", "$isoWeek"...) theo timezone.
// tz rỗng dùng UTC.
func DatePart(op, field, tz string) bson.M {
	if !strings.HasPrefix(op, "$") {
		op = "$" + op
	}
	arg := bson.M{"date": Field(field)}
	if tz != "" {
		arg["timezone"] = tz
	}
	return bson.M{op: arg}
}
