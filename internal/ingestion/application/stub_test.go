package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	ingestion "energy-dashboard/internal/ingestion/domain"
)

type stubCatalog struct {
	mu       sync.Mutex
	refs     []SourceRef
	tables   map[string]ingestion.RawTable
	readErr  map[string]error
	reads    int
	discover error
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		tables:  make(map[string]ingestion.RawTable),
		readErr: make(map[string]error),
	}
}

func (s *stubCatalog) add(name string, header []string, records ...[]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs = append(s.refs, SourceRef{Name: name, Size: int64(len(records)), ModTime: time.Unix(1700000000, 0)})
	s.tables[name] = ingestion.RawTable{Name: name, Header: header, Records: records}
}

func (s *stubCatalog) touch(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.refs {
		if s.refs[i].Name == name {
			s.refs[i].ModTime = s.refs[i].ModTime.Add(time.Minute)
		}
	}
}

func (s *stubCatalog) Discover(context.Context) ([]SourceRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discover != nil {
		return nil, s.discover
	}
	return append([]SourceRef(nil), s.refs...), nil
}

func (s *stubCatalog) Read(_ context.Context, ref SourceRef) (ingestion.RawTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if err := s.readErr[ref.Name]; err != nil {
		return ingestion.RawTable{}, err
	}
	table, ok := s.tables[ref.Name]
	if !ok {
		return ingestion.RawTable{}, fmt.Errorf("stub: %s not found", ref.Name)
	}
	return table, nil
}

func (s *stubCatalog) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }
