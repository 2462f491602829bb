package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/brianmay/penguin-nurse/internal"
)

// persistedTable is one JSON file under the data directory.
type persistedTable interface {
	fileName() string
	load(r io.Reader) error
	// snapshot copies the rows for writing. Called with the store lock held.
	snapshot() any
	isDirty() bool
	setDirty(bool)
}

// fileTable is an in-memory index of rows keyed by K, saved as one JSON file.
type fileTable[K comparable, T any] struct {
	name   string
	rows   map[K]*T
	nextID int64
	key    func(*T) K
	dirty  bool
}

type tableFile[T any] struct {
	NextID int64 `json:"next_id"`
	Rows   []T   `json:"rows"`
}

func newFileTable[K comparable, T any](name string, key func(*T) K) *fileTable[K, T] {
	return &fileTable[K, T]{name: name, rows: make(map[K]*T), key: key}
}

func (t *fileTable[K, T]) fileName() string { return t.name }
func (t *fileTable[K, T]) isDirty() bool    { return t.dirty }
func (t *fileTable[K, T]) setDirty(d bool)  { t.dirty = d }

func (t *fileTable[K, T]) load(r io.Reader) error {
	var f tableFile[T]
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	t.nextID = f.NextID
	for i := range f.Rows {
		row := f.Rows[i]
		t.rows[t.key(&row)] = &row
	}
	return nil
}

func (t *fileTable[K, T]) snapshot() any {
	rows := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, *r)
	}
	return tableFile[T]{NextID: t.nextID, Rows: rows}
}

func (t *fileTable[K, T]) allocID() int64 {
	t.nextID++
	return t.nextID
}

// put stores a copy of row and schedules a save.
func (t *fileTable[K, T]) put(row T) {
	t.rows[t.key(&row)] = &row
	t.dirty = true
}

func (t *fileTable[K, T]) remove(k K) bool {
	if _, ok := t.rows[k]; !ok {
		return false
	}
	delete(t.rows, k)
	t.dirty = true
	return true
}

// removeWhere deletes every row matching pred.
func (t *fileTable[K, T]) removeWhere(pred func(*T) bool) {
	for k, r := range t.rows {
		if pred(r) {
			delete(t.rows, k)
			t.dirty = true
		}
	}
}

// FileStorage keeps everything in memory and writes JSON snapshots to disk
// from a debounced background worker.
type FileStorage struct {
	mu        sync.RWMutex
	flushMu   sync.Mutex
	dir       string
	tables    []persistedTable
	saveChan  chan struct{}
	shutdown  chan struct{}
	wg        sync.WaitGroup
	saveDelay time.Duration
	closeOnce sync.Once
	now       func() time.Time
	logger    internal.Logger

	wees          *fileEventRepo[internal.Wee, internal.NewWee, internal.ChangeWee, *internal.Wee, *internal.NewWee, *internal.ChangeWee]
	weeUrges      *fileEventRepo[internal.WeeUrge, internal.NewWeeUrge, internal.ChangeWeeUrge, *internal.WeeUrge, *internal.NewWeeUrge, *internal.ChangeWeeUrge]
	poos          *fileEventRepo[internal.Poo, internal.NewPoo, internal.ChangePoo, *internal.Poo, *internal.NewPoo, *internal.ChangePoo]
	consumptions  *fileConsumptionRepo
	exercises     *fileEventRepo[internal.Exercise, internal.NewExercise, internal.ChangeExercise, *internal.Exercise, *internal.NewExercise, *internal.ChangeExercise]
	symptoms      *fileEventRepo[internal.Symptom, internal.NewSymptom, internal.ChangeSymptom, *internal.Symptom, *internal.NewSymptom, *internal.ChangeSymptom]
	healthMetrics *fileEventRepo[internal.HealthMetric, internal.NewHealthMetric, internal.ChangeHealthMetric, *internal.HealthMetric, *internal.NewHealthMetric, *internal.ChangeHealthMetric]
	refluxes      *fileEventRepo[internal.Reflux, internal.NewReflux, internal.ChangeReflux, *internal.Reflux, *internal.NewReflux, *internal.ChangeReflux]
	notes         *fileEventRepo[internal.Note, internal.NewNote, internal.ChangeNote, *internal.Note, *internal.NewNote, *internal.ChangeNote]

	users            *fileTable[int64, internal.User]
	consumables      *fileTable[int64, internal.Consumable]
	nested           *fileTable[[2]int64, internal.NestedConsumable]
	consumptionItems *fileTable[[2]int64, internal.ConsumptionConsumable]
	sessions         *fileTable[string, internal.Session]

	// userScoped lists the tables whose rows go away with their user.
	userScoped []interface{ deleteForUser(userID int64) }
}

type FileOption func(*FileStorage)

// WithSaveDelay sets the debounce interval of the save worker.
func WithSaveDelay(d time.Duration) FileOption {
	return func(s *FileStorage) { s.saveDelay = d }
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) FileOption {
	return func(s *FileStorage) { s.now = now }
}

func NewFileStorage(dir string, logger internal.Logger, opts ...FileOption) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	s := &FileStorage{
		dir:       dir,
		saveChan:  make(chan struct{}, 1),
		shutdown:  make(chan struct{}),
		saveDelay: 500 * time.Millisecond,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wees = newFileEventRepo[internal.Wee, internal.NewWee, internal.ChangeWee](s, "wees.json")
	s.weeUrges = newFileEventRepo[internal.WeeUrge, internal.NewWeeUrge, internal.ChangeWeeUrge](s, "wee_urges.json")
	s.poos = newFileEventRepo[internal.Poo, internal.NewPoo, internal.ChangePoo](s, "poos.json")
	s.consumptions = &fileConsumptionRepo{
		fileEventRepo: newFileEventRepo[internal.Consumption, internal.NewConsumption, internal.ChangeConsumption](s, "consumptions.json"),
	}
	s.exercises = newFileEventRepo[internal.Exercise, internal.NewExercise, internal.ChangeExercise](s, "exercises.json")
	s.symptoms = newFileEventRepo[internal.Symptom, internal.NewSymptom, internal.ChangeSymptom](s, "symptoms.json")
	s.healthMetrics = newFileEventRepo[internal.HealthMetric, internal.NewHealthMetric, internal.ChangeHealthMetric](s, "health_metrics.json")
	s.refluxes = newFileEventRepo[internal.Reflux, internal.NewReflux, internal.ChangeReflux](s, "refluxes.json")
	s.notes = newFileEventRepo[internal.Note, internal.NewNote, internal.ChangeNote](s, "notes.json")

	s.users = newFileTable("users.json", func(u *internal.User) int64 { return u.ID })
	s.consumables = newFileTable("consumables.json", func(c *internal.Consumable) int64 { return c.ID })
	s.nested = newFileTable("nested_consumables.json", func(n *internal.NestedConsumable) [2]int64 {
		return [2]int64{n.ParentID, n.ConsumableID}
	})
	s.consumptionItems = newFileTable("consumption_consumables.json", func(n *internal.ConsumptionConsumable) [2]int64 {
		return [2]int64{n.ConsumptionID, n.ConsumableID}
	})
	s.sessions = newFileTable("sessions.json", func(s *internal.Session) string { return s.ID })

	s.consumptions.onDelete = func(id int64) {
		s.consumptionItems.removeWhere(func(n *internal.ConsumptionConsumable) bool { return n.ConsumptionID == id })
	}
	s.userScoped = []interface{ deleteForUser(int64) }{
		s.wees, s.weeUrges, s.poos, s.consumptions, s.exercises,
		s.symptoms, s.healthMetrics, s.refluxes, s.notes,
	}

	s.tables = []persistedTable{
		s.wees.t, s.weeUrges.t, s.poos.t, s.consumptions.t, s.exercises.t,
		s.symptoms.t, s.healthMetrics.t, s.refluxes.t, s.notes.t,
		s.users, s.consumables, s.nested, s.consumptionItems, s.sessions,
	}
	for _, t := range s.tables {
		if err := s.loadTable(t); err != nil {
			logger.Errorf("storage: failed to load %s: %v", t.fileName(), err)
			return nil, err
		}
	}

	s.wg.Add(1)
	go s.saveWorker()

	return s, nil
}

func (s *FileStorage) loadTable(t persistedTable) error {
	file, err := os.Open(filepath.Join(s.dir, t.fileName()))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	return t.load(file)
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

// flush writes every dirty table. Tables that fail to save stay dirty.
func (s *FileStorage) flush() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	type pending struct {
		t    persistedTable
		data any
	}
	var todo []pending
	s.mu.Lock()
	for _, t := range s.tables {
		if t.isDirty() {
			todo = append(todo, pending{t: t, data: t.snapshot()})
			t.setDirty(false)
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, p := range todo {
		if err := atomicWriteFileJSON(filepath.Join(s.dir, p.t.fileName()), p.data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.t.fileName(), err))
			s.mu.Lock()
			p.t.setDirty(true)
			s.mu.Unlock()
		}
	}
	return errors.Join(errs...)
}

// changed wakes the save worker. Call after releasing the lock.
func (s *FileStorage) changed() {
	select {
	case s.saveChan <- struct{}{}:
	default:
	}
}

func (s *FileStorage) saveWorker() {
	defer s.wg.Done()
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.flush(); err != nil {
				s.logger.Errorf("storage: error saving data: %v", err)
			}
		case <-s.shutdown:
			return
		}
	}
}

// Close stops the save worker and writes pending changes synchronously.
func (s *FileStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdown)
		s.wg.Wait()
		err = s.flush()
	})
	return err
}

func (s *FileStorage) Ping(ctx context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

func (s *FileStorage) Wees() WeeRepository                   { return s.wees }
func (s *FileStorage) WeeUrges() WeeUrgeRepository           { return s.weeUrges }
func (s *FileStorage) Poos() PooRepository                   { return s.poos }
func (s *FileStorage) Consumptions() ConsumptionRepository   { return s.consumptions }
func (s *FileStorage) Exercises() ExerciseRepository         { return s.exercises }
func (s *FileStorage) Symptoms() SymptomRepository           { return s.symptoms }
func (s *FileStorage) HealthMetrics() HealthMetricRepository { return s.healthMetrics }
func (s *FileStorage) Refluxes() RefluxRepository            { return s.refluxes }
func (s *FileStorage) Notes() NoteRepository                 { return s.notes }
func (s *FileStorage) Users() UserRepository                 { return (*fileUsers)(s) }
func (s *FileStorage) Consumables() ConsumableRepository     { return (*fileConsumables)(s) }
func (s *FileStorage) ConsumptionItems() ConsumptionConsumableRepository {
	return (*fileConsumptionItems)(s)
}
func (s *FileStorage) Sessions() SessionStore { return (*fileSessions)(s) }

// --- Compile-time assertions ---
var _ Store = (*FileStorage)(nil)
