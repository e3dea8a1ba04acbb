package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"barfer_analytics/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexSpec là một index dựng từ struct tag `index`
type IndexSpec struct {
	Name   string
	Keys   bson.D
	Sparse bool
}

// parseOrder trả về -1 nếu cấu hình có order:-1, ngược lại 1
func parseOrder(cfg map[string]string) int {
	if cfg["order"] == "-1" {
		return -1
	}
	return 1
}

// parseIndexTag tách tag dạng "single,order:-1;compound:status_createdAt"
// thành danh sách cấu hình key/value.
func parseIndexTag(tag string) []map[string]string {
	var result []map[string]string
	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		entry := map[string]string{}
		for _, sub := range strings.Split(part, ",") {
			key, value, _ := strings.Cut(strings.TrimSpace(sub), ":")
			entry[key] = value
		}
		result = append(result, entry)
	}
	return result
}

// bsonName lấy tên field bson, bỏ qua ",omitempty"
func bsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("bson"), ",")
	return name
}

// IndexSpecs đọc tag `index` của model và trả về danh sách index cần có.
// Hỗ trợ: single, text, sparse, order:-1, compound:<tên>. Thứ tự field trong
// compound theo thứ tự khai báo trong struct.
func IndexSpecs(model any) []IndexSpec {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	var specs []IndexSpec
	compounds := map[string]*IndexSpec{}
	var compoundNames []string

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		tag, ok := field.Tag.Lookup("index")
		if !ok {
			continue
		}
		name := bsonName(field)
		if name == "" || name == "-" {
			continue
		}

		for _, cfg := range parseIndexTag(tag) {
			_, sparse := cfg["sparse"]
			if _, ok := cfg["text"]; ok {
				specs = append(specs, IndexSpec{
					Name: name + "_text",
					Keys: bson.D{{Key: name, Value: "text"}},
				})
			}
			if _, ok := cfg["single"]; ok {
				specs = append(specs, IndexSpec{
					Name:   name + "_single",
					Keys:   bson.D{{Key: name, Value: parseOrder(cfg)}},
					Sparse: sparse,
				})
			}
			if group, ok := cfg["compound"]; ok && group != "" {
				spec, exists := compounds[group]
				if !exists {
					spec = &IndexSpec{Name: group}
					compounds[group] = spec
					compoundNames = append(compoundNames, group)
				}
				spec.Keys = append(spec.Keys, bson.E{Key: name, Value: parseOrder(cfg)})
				spec.Sparse = spec.Sparse || sparse
			}
		}
	}

	sort.Strings(compoundNames)
	for _, group := range compoundNames {
		specs = append(specs, *compounds[group])
	}
	return specs
}

// sameKeys so sánh keys của index hiện có với keys mong muốn
func sameKeys(existing bson.M, keys bson.D) bool {
	existingKeys, ok := existing["key"].(bson.M)
	if !ok || len(existingKeys) != len(keys) {
		return false
	}
	for _, key := range keys {
		value, exists := existingKeys[key.Key]
		if !exists {
			return false
		}
		want, isInt := key.Value.(int)
		if !isInt {
			if value != key.Value {
				return false
			}
			continue
		}
		switch v := value.(type) {
		case int32:
			if int(v) != want {
				return false
			}
		case int64:
			if int(v) != want {
				return false
			}
		case float64:
			if int(v) != want {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// CreateIndexes tạo các index khai báo trong model. Index cùng tên nhưng
// khác cấu hình sẽ bị xoá và tạo lại. Trả về số index đã tạo mới.
func CreateIndexes(ctx context.Context, collection *mongo.Collection, model any) (int, error) {
	log := logger.GetAppLogger().WithField("collection", collection.Name())

	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return 0, fmt.Errorf("không thể lấy danh sách index: %w", err)
	}
	var listed []bson.M
	if err := cursor.All(ctx, &listed); err != nil {
		return 0, fmt.Errorf("không thể giải mã thông tin index: %w", err)
	}
	existing := make(map[string]bson.M, len(listed))
	for _, idx := range listed {
		if name, ok := idx["name"].(string); ok {
			existing[name] = idx
		}
	}

	created := 0
	for _, spec := range IndexSpecs(model) {
		if current, ok := existing[spec.Name]; ok {
			sparse, _ := current["sparse"].(bool)
			if sameKeys(current, spec.Keys) && sparse == spec.Sparse {
				log.WithField("index", spec.Name).Debug("Index đã đúng cấu hình, bỏ qua")
				continue
			}
			if _, err := collection.Indexes().DropOne(ctx, spec.Name); err != nil {
				return created, fmt.Errorf("không thể xóa index %s: %w", spec.Name, err)
			}
			log.WithField("index", spec.Name).Info("Đã xóa index cũ")
		}

		opts := options.Index().SetName(spec.Name)
		if spec.Sparse {
			opts.SetSparse(true)
		}
		if _, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: spec.Keys, Options: opts}); err != nil {
			return created, fmt.Errorf("không thể tạo index %s: %w", spec.Name, err)
		}
		created++
		log.WithField("index", spec.Name).Info("Đã tạo index")
	}
	return created, nil
}
