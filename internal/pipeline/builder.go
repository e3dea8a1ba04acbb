package pipeline

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Builder ghép các stage theo thứ tự gọi.
//
// Example:
//
//	p := pipeline.New().
//	    Match(bson.M{"status": "confirmed"}).
//	    Group(nil, bson.D{{Key: "total", Value: pipeline.Sum("$total")}}).
//	    Build()
type Builder struct {
	stages []Stage
}

// New tạo builder rỗng
func New() *Builder {
	return &Builder{}
}

// Add thêm stage bất kỳ
func (b *Builder) Add(s Stage) *Builder {
	b.stages = append(b.stages, s)
	return b
}

// Match thêm $match. Filter rỗng không thêm gì.
func (b *Builder) Match(filter bson.M) *Builder {
	if len(filter) == 0 {
		return b
	}
	return b.Add(Match{Filter: filter})
}

// Unwind thêm $unwind, bỏ document có mảng rỗng
func (b *Builder) Unwind(path string) *Builder {
	return b.Add(Unwind{Path: path})
}

// AddFields thêm $addFields
func (b *Builder) AddFields(fields bson.D) *Builder {
	return b.Add(AddFields{Fields: fields})
}

// Group thêm $group
func (b *Builder) Group(id any, fields bson.D) *Builder {
	return b.Add(Group{ID: id, Fields: fields})
}

// Project thêm $project
func (b *Builder) Project(fields bson.D) *Builder {
	return b.Add(Project{Fields: fields})
}

// Sort thêm $sort. Không có khóa thì không thêm gì.
func (b *Builder) Sort(keys ...SortKey) *Builder {
	if len(keys) == 0 {
		return b
	}
	return b.Add(Sort{Keys: keys})
}

// Limit thêm $limit khi n > 0
func (b *Builder) Limit(n int) *Builder {
	if n <= 0 {
		return b
	}
	return b.Add(Limit{N: int64(n)})
}

// Stages trả về bản sao danh sách stage
func (b *Builder) Stages() []Stage {
	out := make([]Stage, len(b.stages))
	copy(out, b.stages)
	return out
}

// Build render pipeline
func (b *Builder) Build() mongo.Pipeline {
	p := make(mongo.Pipeline, 0, len(b.stages))
	for _, s := range b.stages {
		p = append(p, s.Document())
	}
	return p
}
