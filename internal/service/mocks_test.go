package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// fakeClock returns a fixed time that tests advance explicitly.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeStudentRegistry is an in-memory store.StudentRegistry.
type fakeStudentRegistry struct {
	mu       sync.Mutex
	students map[uuid.UUID]*domain.Student
}

var _ store.StudentRegistry = (*fakeStudentRegistry)(nil)

func newFakeStudentRegistry(students ...*domain.Student) *fakeStudentRegistry {
	r := &fakeStudentRegistry{students: make(map[uuid.UUID]*domain.Student)}
	for _, s := range students {
		r.students[s.ID] = s
	}
	return r
}

func (r *fakeStudentRegistry) Create(ctx context.Context, student *domain.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.students {
		if existing.Email == student.Email {
			return store.ErrEmailExists
		}
	}
	student.HashedPassword = "hashed:" + student.Password
	student.Password = ""
	r.students[student.ID] = student
	return nil
}

func (r *fakeStudentRegistry) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[id]
	if !ok {
		return nil, store.ErrStudentNotFound
	}
	return student, nil
}

func (r *fakeStudentRegistry) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, student := range r.students {
		if student.Email == email {
			return student, nil
		}
	}
	return nil, store.ErrStudentNotFound
}

func (r *fakeStudentRegistry) Update(ctx context.Context, student *domain.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[student.ID]; !ok {
		return store.ErrStudentNotFound
	}
	r.students[student.ID] = student
	return nil
}

// fakeKnowledgeStore is an in-memory store.KnowledgeGraphStore.
type fakeKnowledgeStore struct {
	mu    sync.Mutex
	nodes map[uuid.UUID]*domain.KnowledgeNode
	edges map[uuid.UUID]*domain.BranchEdge
}

var _ store.KnowledgeGraphStore = (*fakeKnowledgeStore)(nil)

func newFakeKnowledgeStore(nodes ...*domain.KnowledgeNode) *fakeKnowledgeStore {
	s := &fakeKnowledgeStore{
		nodes: make(map[uuid.UUID]*domain.KnowledgeNode),
		edges: make(map[uuid.UUID]*domain.BranchEdge),
	}
	for _, n := range nodes {
		s.addNode(n)
	}
	return s
}

func (s *fakeKnowledgeStore) addNode(node *domain.KnowledgeNode) {
	s.nodes[node.ID] = node
	for i := range node.Branches {
		edge := node.Branches[i]
		s.edges[edge.ID] = &edge
	}
}

func (s *fakeKnowledgeStore) GetNodeByID(ctx context.Context, id uuid.UUID) (*domain.KnowledgeNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[id]
	if !ok {
		return nil, store.ErrNodeNotFound
	}
	return node, nil
}

func (s *fakeKnowledgeStore) GetNodeByCode(ctx context.Context, code string) (*domain.KnowledgeNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, node := range s.nodes {
		if node.Code == code {
			return node, nil
		}
	}
	return nil, store.ErrNodeNotFound
}

func (s *fakeKnowledgeStore) ListNodes(ctx context.Context, filter store.NodeFilter) ([]*domain.KnowledgeNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var nodes []*domain.KnowledgeNode
	for _, node := range s.nodes {
		if filter.GradeLevel != 0 && node.GradeLevel != filter.GradeLevel {
			continue
		}
		if filter.Domain != "" && node.Domain != filter.Domain {
			continue
		}
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].GradeLevel != nodes[j].GradeLevel {
			return nodes[i].GradeLevel < nodes[j].GradeLevel
		}
		return nodes[i].Code < nodes[j].Code
	})
	return nodes, nil
}

func (s *fakeKnowledgeStore) GetBranchEdge(ctx context.Context, id uuid.UUID) (*domain.BranchEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge, ok := s.edges[id]
	if !ok {
		return nil, store.ErrBranchNotFound
	}
	return edge, nil
}

func (s *fakeKnowledgeStore) ListBranchEdges(ctx context.Context) ([]*domain.BranchEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var edges []*domain.BranchEdge
	for _, edge := range s.edges {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Label < edges[j].Label
	})
	return edges, nil
}

// fakeMasteryStore is an in-memory store.MasteryStore with revision
// checking and injectable append conflicts.
type fakeMasteryStore struct {
	mu      sync.Mutex
	records map[string]*domain.MasteryRecord

	// conflictsLeft makes the next N appends fail with
	// ErrConcurrentModification before succeeding.
	conflictsLeft int
}

var _ store.MasteryStore = (*fakeMasteryStore)(nil)

func newFakeMasteryStore() *fakeMasteryStore {
	return &fakeMasteryStore{records: make(map[string]*domain.MasteryRecord)}
}

func masteryKey(studentID, nodeID uuid.UUID) string {
	return studentID.String() + "|" + nodeID.String()
}

func (s *fakeMasteryStore) Get(ctx context.Context, studentID, nodeID uuid.UUID) (*domain.MasteryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[masteryKey(studentID, nodeID)]
	if !ok {
		return nil, store.ErrMasteryRecordNotFound
	}
	return record.Clone(), nil
}

func (s *fakeMasteryStore) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.MasteryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []*domain.MasteryRecord
	for key, record := range s.records {
		if strings.HasPrefix(key, studentID.String()+"|") {
			records = append(records, record.Clone())
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].NodeID.String() < records[j].NodeID.String()
	})
	return records, nil
}

func (s *fakeMasteryStore) CompareAndAppend(ctx context.Context, record *domain.MasteryRecord, expectedRevision int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflictsLeft > 0 {
		s.conflictsLeft--
		return store.ErrConcurrentModification
	}

	key := masteryKey(record.StudentID, record.NodeID)
	existing, ok := s.records[key]
	if expectedRevision == 0 {
		if ok {
			return store.ErrConcurrentModification
		}
	} else if !ok || existing.Revision != expectedRevision {
		return store.ErrConcurrentModification
	}

	record.Revision = expectedRevision + 1
	s.records[key] = record.Clone()
	return nil
}

func (s *fakeMasteryStore) WithTx(tx *sql.Tx) store.MasteryStore {
	return s
}

// put seeds a record directly, bypassing the revision guard.
func (s *fakeMasteryStore) put(record *domain.MasteryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.Revision == 0 {
		record.Revision = 1
	}
	s.records[masteryKey(record.StudentID, record.NodeID)] = record.Clone()
}

// fakeBranchStore is an in-memory store.BranchStore.
type fakeBranchStore struct {
	mu      sync.Mutex
	unlocks map[string]*domain.BranchUnlock
	choices []*domain.BranchChoice
}

var _ store.BranchStore = (*fakeBranchStore)(nil)

func newFakeBranchStore() *fakeBranchStore {
	return &fakeBranchStore{unlocks: make(map[string]*domain.BranchUnlock)}
}

func unlockKey(studentID, branchID uuid.UUID) string {
	return studentID.String() + "|" + branchID.String()
}

func (s *fakeBranchStore) ListUnlocks(ctx context.Context, studentID uuid.UUID) ([]*domain.BranchUnlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var unlocks []*domain.BranchUnlock
	for _, unlock := range s.unlocks {
		if unlock.StudentID == studentID {
			unlocks = append(unlocks, unlock)
		}
	}
	sort.Slice(unlocks, func(i, j int) bool {
		return unlocks[i].UnlockedAt.Before(unlocks[j].UnlockedAt)
	})
	return unlocks, nil
}

func (s *fakeBranchStore) CreateUnlock(ctx context.Context, unlock *domain.BranchUnlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := unlockKey(unlock.StudentID, unlock.BranchID)
	if _, ok := s.unlocks[key]; ok {
		return store.ErrDuplicate
	}
	s.unlocks[key] = unlock
	return nil
}

func (s *fakeBranchStore) ListChoices(ctx context.Context, studentID uuid.UUID) ([]*domain.BranchChoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var choices []*domain.BranchChoice
	for _, choice := range s.choices {
		if choice.StudentID == studentID {
			choices = append(choices, choice)
		}
	}
	return choices, nil
}

func (s *fakeBranchStore) CreateChoice(ctx context.Context, choice *domain.BranchChoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.choices = append(s.choices, choice)
	return nil
}

func (s *fakeBranchStore) WithTx(tx *sql.Tx) store.BranchStore {
	return s
}

// fakeGamificationStore is an in-memory store.GamificationStore with
// revision checking and injectable save conflicts.
type fakeGamificationStore struct {
	mu            sync.Mutex
	states        map[uuid.UUID]*domain.GamificationState
	conflictsLeft int
}

var _ store.GamificationStore = (*fakeGamificationStore)(nil)

func newFakeGamificationStore() *fakeGamificationStore {
	return &fakeGamificationStore{states: make(map[uuid.UUID]*domain.GamificationState)}
}

func (s *fakeGamificationStore) Get(ctx context.Context, studentID uuid.UUID) (*domain.GamificationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[studentID]
	if !ok {
		return nil, store.ErrGamificationStateNotFound
	}
	return state.Clone(), nil
}

func (s *fakeGamificationStore) Save(ctx context.Context, state *domain.GamificationState, expectedRevision int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflictsLeft > 0 {
		s.conflictsLeft--
		return store.ErrConcurrentModification
	}

	existing, ok := s.states[state.StudentID]
	if expectedRevision == 0 {
		if ok {
			return store.ErrConcurrentModification
		}
	} else if !ok || existing.Revision != expectedRevision {
		return store.ErrConcurrentModification
	}

	state.Revision = expectedRevision + 1
	s.states[state.StudentID] = state.Clone()
	return nil
}

// fakeUnlockChecker records calls and returns a canned edge set.
type fakeUnlockChecker struct {
	mu     sync.Mutex
	calls  int
	result []*domain.BranchEdge
	err    error
}

func (c *fakeUnlockChecker) CheckBranchUnlock(ctx context.Context, studentID uuid.UUID) ([]*domain.BranchEdge, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.result, c.err
}
