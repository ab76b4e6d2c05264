package usecase

import (
	"sync"

	"github.com/maulanahdr/komentar/internal/model"
)

// Thread is the single shared mutable resource for one material: the current
// comment forest plus pagination bookkeeping and the last surfaced error.
// Every mutation swaps in a new forest produced by the tree package, so a
// snapshot taken at any moment stays valid and inspectable.
type Thread struct {
	mu sync.Mutex

	MaterialId int64

	roots       []model.Comment
	total       int64
	pages       int64
	currentPage int64
	lastError   string
}

func NewThread(materialId int64) *Thread {
	return &Thread{
		MaterialId:  materialId,
		roots:       []model.Comment{},
		pages:       1,
		currentPage: 1,
	}
}

func (thread *Thread) Snapshot() model.ThreadResponse {
	thread.mu.Lock()
	defer thread.mu.Unlock()

	return model.ThreadResponse{
		Items:       thread.roots,
		Total:       thread.total,
		Pages:       thread.pages,
		CurrentPage: thread.currentPage,
		LastError:   thread.lastError,
	}
}

func (thread *Thread) Roots() []model.Comment {
	thread.mu.Lock()
	defer thread.mu.Unlock()

	return thread.roots
}

func (thread *Thread) LastError() string {
	thread.mu.Lock()
	defer thread.mu.Unlock()

	return thread.lastError
}

func (thread *Thread) setList(list model.CommentList) {
	thread.mu.Lock()
	defer thread.mu.Unlock()

	thread.roots = list.Items
	thread.total = list.Total
	thread.pages = list.Pages
	thread.currentPage = list.CurrentPage
	thread.lastError = ""
}

func (thread *Thread) setError(message string) {
	thread.mu.Lock()
	defer thread.mu.Unlock()

	thread.lastError = message
}

// update applies one forest transition under the lock.
func (thread *Thread) update(apply func(forest []model.Comment) []model.Comment) {
	thread.mu.Lock()
	defer thread.mu.Unlock()

	thread.roots = apply(thread.roots)
}

// ThreadRegistry hands out one Thread per material, created on first touch.
type ThreadRegistry struct {
	mu      sync.Mutex
	threads map[int64]*Thread
}

func NewThreadRegistry() *ThreadRegistry {
	return &ThreadRegistry{
		threads: make(map[int64]*Thread),
	}
}

func (registry *ThreadRegistry) Get(materialId int64) *Thread {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	thread, ok := registry.threads[materialId]
	if !ok {
		thread = NewThread(materialId)
		registry.threads[materialId] = thread
	}

	return thread
}
