// Package pipeline dựng aggregation pipeline của MongoDB từ các stage có kiểu.
//
// Mỗi stage render ra bson.D một key ("$match", "$group"...). Builder ghép
// các stage theo thứ tự và trả về mongo.Pipeline để truyền thẳng vào Aggregate.
package pipeline

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Stage là một bước của pipeline
type Stage interface {
	Name() string
	Document() bson.D
}

// Match lọc document theo filter
type Match struct {
	Filter bson.M
}

func (Match) Name() string { return "$match" }

func (s Match) Document() bson.D {
	return bson.D{{Key: s.Name(), Value: s.Filter}}
}

// Unwind tách mảng thành từng document.
// PreserveNullAndEmpty giữ lại document có mảng rỗng hoặc thiếu field.
type Unwind struct {
	Path                 string
	PreserveNullAndEmpty bool
}

func (Unwind) Name() string { return "$unwind" }

func (s Unwind) Document() bson.D {
	path := Field(s.Path)
	if !s.PreserveNullAndEmpty {
		return bson.D{{Key: s.Name(), Value: path}}
	}
	return bson.D{{Key: s.Name(), Value: bson.D{
		{Key: "path", Value: path},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}}}
}

// AddFields thêm field tính toán
type AddFields struct {
	Fields bson.D
}

func (AddFields) Name() string { return "$addFields" }

func (s AddFields) Document() bson.D {
	return bson.D{{Key: s.Name(), Value: s.Fields}}
}

// Group gom nhóm theo ID; Fields là các accumulator
type Group struct {
	ID     any
	Fields bson.D
}

func (Group) Name() string { return "$group" }

func (s Group) Document() bson.D {
	doc := make(bson.D, 0, len(s.Fields)+1)
	doc = append(doc, bson.E{Key: "_id", Value: s.ID})
	doc = append(doc, s.Fields...)
	return bson.D{{Key: s.Name(), Value: doc}}
}

// Project định hình lại document đầu ra
type Project struct {
	Fields bson.D
}

func (Project) Name() string { return "$project" }

func (s Project) Document() bson.D {
	return bson.D{{Key: s.Name(), Value: s.Fields}}
}

// SortKey là một khóa sắp xếp
type SortKey struct {
	Field string
	Desc  bool
}

// Asc sắp xếp tăng dần
func Asc(field string) SortKey { return SortKey{Field: field} }

// Desc sắp xếp giảm dần
func Desc(field string) SortKey { return SortKey{Field: field, Desc: true} }

// Sort sắp xếp theo thứ tự các khóa
type Sort struct {
	Keys []SortKey
}

func (Sort) Name() string { return "$sort" }

func (s Sort) Document() bson.D {
	keys := make(bson.D, 0, len(s.Keys))
	for _, k := range s.Keys {
		dir := 1
		if k.Desc {
			dir = -1
		}
		keys = append(keys, bson.E{Key: k.Field, Value: dir})
	}
	return bson.D{{Key: s.Name(), Value: keys}}
}

// Limit giới hạn số document
type Limit struct {
	N int64
}

func (Limit) Name() string { return "$limit" }

func (s Limit) Document() bson.D {
	return bson.D{{Key: s.Name(), Value: s.N}}
}
