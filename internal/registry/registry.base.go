// Package registry giữ các instance dùng chung (collection handle, service...) theo tên.
// Mọi thao tác đều an toàn khi gọi đồng thời.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"barfer_analytics/internal/common"
)

// Registry là map có khóa chuỗi, bảo vệ bởi RWMutex.
//
// Example:
//
//	cols := registry.NewRegistry[*mongo.Collection]()
//	col, err := cols.GetOrCreate("orders", func() (*mongo.Collection, error) {
//	    return db.Collection("orders"), nil
//	})
type Registry[T any] struct {
	items map[string]T // Map lưu trữ các items theo key
	mu    sync.RWMutex
}

// NewRegistry tạo registry rỗng.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		items: make(map[string]T),
	}
}

// Register đăng ký (hoặc ghi đè) item.
// isNew = false khi đã có item cùng tên trước đó.
func (r *Registry[T]) Register(name string, item T) (isNew bool, err error) {
	if name == "" {
		return false, fmt.Errorf("name cannot be empty: %w", common.ErrRequiredField)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.items[name]
	r.items[name] = item
	return !exists, nil
}

// Get lấy item theo tên.
func (r *Registry[T]) Get(name string) (item T, exists bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, exists = r.items[name]
	return item, exists
}

// GetOrCreate trả về item đã có, hoặc gọi creator dưới lock để tạo đúng một lần.
// Nếu creator lỗi thì không lưu gì, lần gọi sau sẽ thử lại.
func (r *Registry[T]) GetOrCreate(name string, creator func() (T, error)) (item T, err error) {
	if name == "" {
		return item, fmt.Errorf("name cannot be empty: %w", common.ErrRequiredField)
	}

	// Fast path
	r.mu.RLock()
	if existing, ok := r.items[name]; ok {
		r.mu.RUnlock()
		return existing, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[name]; ok {
		return existing, nil
	}

	created, err := creator()
	if err != nil {
		return item, err
	}
	r.items[name] = created
	return created, nil
}

// Names trả về danh sách tên đã đăng ký, sắp xếp tăng dần.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len trả về số item hiện có.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Clear xóa một item; cleanup (nếu có) được gọi trước khi xóa.
func (r *Registry[T]) Clear(name string, cleanup func(T) error) (deleted bool, err error) {
	if name == "" {
		return false, fmt.Errorf("name cannot be empty: %w", common.ErrRequiredField)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[name]
	if !exists {
		return false, nil
	}
	if cleanup != nil {
		if err := cleanup(item); err != nil {
			return false, fmt.Errorf("failed to cleanup item %s: %w", name, err)
		}
	}
	delete(r.items, name)
	return true, nil
}

// ClearAll xóa toàn bộ items. Lỗi cleanup được gộp lại bằng errors.Join,
// registry vẫn được làm rỗng.
func (r *Registry[T]) ClearAll(cleanup func(T) error) (count int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count = len(r.items)
	if cleanup != nil {
		var errs []error
		for name, item := range r.items {
			if err := cleanup(item); err != nil {
				errs = append(errs, fmt.Errorf("failed to cleanup %s: %w", name, err))
			}
		}
		err = errors.Join(errs...)
	}

	r.items = make(map[string]T)
	return count, err
}
