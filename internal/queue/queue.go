// Package queue holds questions that have not been picked up by a mentor yet.
//
// Each company owns a FIFO list of Normal questions and a heap of High
// questions ordered by priority, then age, then arrival. The queue is derived
// state: the entity store stays authoritative and the queue can be rebuilt from
// pending questions at any time.
package queue

import (
	"container/heap"
	"container/list"
	"sort"
	"sync"

	"github.com/noah-isme/ascend-api/internal/models"
)

type entry struct {
	question models.Question
	priority int
	seq      uint64
	index    int
}

type priorityHeap []*entry

func (h priorityHeap) Len() int { return len(h) }

func (h priorityHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	if !a.question.CreatedAt.Equal(b.question.CreatedAt) {
		return a.question.CreatedAt.Before(b.question.CreatedAt)
	}
	return a.seq < b.seq
}

func (h priorityHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *priorityHeap) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *priorityHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

type companyQueue struct {
	fifo   *list.List
	urgent priorityHeap
}

func (c *companyQueue) size() int {
	return c.fifo.Len() + len(c.urgent)
}

// location remembers where a queued question lives so it can be removed in O(log n).
type location struct {
	companyID string
	elem      *list.Element
	entry     *entry
}

// Queue is safe for concurrent use; every mutation is serialized by one mutex.
type Queue struct {
	mu        sync.Mutex
	companies map[string]*companyQueue
	index     map[string]location
	seq       uint64
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{
		companies: make(map[string]*companyQueue),
		index:     make(map[string]location),
	}
}

// Enqueue routes a question by urgency. Answered questions and questions that
// are already queued are rejected.
func (q *Queue) Enqueue(question models.Question) bool {
	if question.Status == models.QuestionStatusAnswered {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.index[question.ID]; exists {
		return false
	}

	cq := q.companyLocked(question.CompanyID)
	q.seq++
	loc := location{companyID: question.CompanyID}
	if question.Urgency == models.UrgencyHigh {
		e := &entry{question: question, priority: question.Urgency.Priority(), seq: q.seq}
		heap.Push(&cq.urgent, e)
		loc.entry = e
	} else {
		loc.elem = cq.fifo.PushBack(question)
	}
	q.index[question.ID] = loc
	return true
}

// DequeueFor pops the next question for a company: urgent questions first,
// then the head of the FIFO list.
func (q *Queue) DequeueFor(companyID string) (*models.Question, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	question, ok := q.frontLocked(companyID)
	if !ok {
		return nil, false
	}
	q.removeLocked(question.ID)
	return &question, true
}

// Front returns the question DequeueFor would pop next without removing it.
func (q *Queue) Front(companyID string) (*models.Question, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	question, ok := q.frontLocked(companyID)
	if !ok {
		return nil, false
	}
	return &question, true
}

// Remove drops a question wherever it is queued.
func (q *Queue) Remove(questionID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(questionID)
}

// Contains reports whether the question is currently queued.
func (q *Queue) Contains(questionID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.index[questionID]
	return ok
}

// SizeFor returns the number of queued questions for a company.
func (q *Queue) SizeFor(companyID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if cq, ok := q.companies[companyID]; ok {
		return cq.size()
	}
	return 0
}

// Peek returns a snapshot of a company's queue in dequeue order.
func (q *Queue) Peek(companyID string) []models.Question {
	q.mu.Lock()
	defer q.mu.Unlock()

	cq, ok := q.companies[companyID]
	if !ok {
		return nil
	}

	urgent := make([]*entry, len(cq.urgent))
	copy(urgent, cq.urgent)
	sort.Slice(urgent, func(i, j int) bool { return priorityHeap(urgent).Less(i, j) })

	out := make([]models.Question, 0, cq.size())
	for _, e := range urgent {
		out = append(out, e.question)
	}
	for el := cq.fifo.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(models.Question))
	}
	return out
}

// Len returns the total number of queued questions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.index)
}

// UrgentLen returns the number of queued High urgency questions.
func (q *Queue) UrgentLen() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, cq := range q.companies {
		n += len(cq.urgent)
	}
	return n
}

// Companies returns how many companies currently have queued questions.
func (q *Queue) Companies() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.companies)
}

// Reset empties the queue.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.companies = make(map[string]*companyQueue)
	q.index = make(map[string]location)
}

func (q *Queue) companyLocked(companyID string) *companyQueue {
	cq, ok := q.companies[companyID]
	if !ok {
		cq = &companyQueue{fifo: list.New()}
		q.companies[companyID] = cq
	}
	return cq
}

func (q *Queue) frontLocked(companyID string) (models.Question, bool) {
	cq, ok := q.companies[companyID]
	if !ok {
		return models.Question{}, false
	}
	switch {
	case len(cq.urgent) > 0:
		return cq.urgent[0].question, true
	case cq.fifo.Len() > 0:
		return cq.fifo.Front().Value.(models.Question), true
	default:
		return models.Question{}, false
	}
}

func (q *Queue) removeLocked(questionID string) bool {
	loc, ok := q.index[questionID]
	if !ok {
		return false
	}
	cq := q.companies[loc.companyID]
	if loc.entry != nil {
		heap.Remove(&cq.urgent, loc.entry.index)
	} else {
		cq.fifo.Remove(loc.elem)
	}
	delete(q.index, questionID)
	q.pruneLocked(loc.companyID, cq)
	return true
}

func (q *Queue) pruneLocked(companyID string, cq *companyQueue) {
	if cq.size() == 0 {
		delete(q.companies, companyID)
	}
}
