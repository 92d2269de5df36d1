package registry

import (
	"fmt"
	"sync"
)

// Registry là generic registry lưu trữ các cặp name/item dùng chung toàn hệ thống.
// Dùng cho collections, services... tránh khởi tạo trùng lặp.
type Registry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewRegistry tạo một registry mới
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		items: make(map[string]T),
	}
}

// Register đăng ký một item với tên cho trước. Trả về lỗi nếu tên đã tồn tại.
func (r *Registry[T]) Register(name string, item T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; exists {
		return fmt.Errorf("item với tên '%s' đã được đăng ký", name)
	}

	r.items[name] = item
	return nil
}

// Get lấy item theo tên
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[name]
	return item, exists
}

// MustGet lấy item theo tên, panic nếu không tồn tại.
// Chỉ dùng trong giai đoạn khởi tạo khi item chắc chắn đã được đăng ký.
func (r *Registry[T]) MustGet(name string) T {
	item, exists := r.Get(name)
	if !exists {
		panic(fmt.Sprintf("item với tên '%s' chưa được đăng ký", name))
	}
	return item
}

// Has kiểm tra item có tồn tại không
func (r *Registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.items[name]
	return exists
}

// Remove xóa item khỏi registry
func (r *Registry[T]) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, name)
}

// Names trả về danh sách tên các item đã đăng ký
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	return names
}

// Count trả về số lượng item đã đăng ký
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
