package bankdata

import (
	"sync"

	"github.com/pkg/errors"
)

// Translator maps the values of a column to dense integer ids and back. It is
// the storage behind label encoding. Implementations should be threadsafe and
// generate ids monotonically per column, starting at 0.
type Translator interface {
	Get(column string, id uint64) (interface{}, error)
	GetID(column string, val interface{}) (uint64, error)
}

// ColumnTranslator works like a Translator for a single column.
type ColumnTranslator interface {
	Get(id uint64) (interface{}, error)
	GetID(val interface{}) (uint64, error)
}

// MapTranslator is an in-memory implementation of Translator.
type MapTranslator struct {
	lock    sync.RWMutex
	columns map[string]*MapColumnTranslator
}

// NewMapTranslator creates a new MapTranslator.
func NewMapTranslator() *MapTranslator {
	return &MapTranslator{
		columns: make(map[string]*MapColumnTranslator),
	}
}

func (m *MapTranslator) getColumnTranslator(column string) *MapColumnTranslator {
	m.lock.RLock()
	if mt, ok := m.columns[column]; ok {
		m.lock.RUnlock()
		return mt
	}
	m.lock.RUnlock()
	m.lock.Lock()
	defer m.lock.Unlock()
	if mt, ok := m.columns[column]; ok {
		return mt
	}
	m.columns[column] = NewMapColumnTranslator()
	return m.columns[column]
}

// Get returns the value mapped to the given id in the given column.
func (m *MapTranslator) Get(column string, id uint64) (interface{}, error) {
	val, err := m.getColumnTranslator(column).Get(id)
	if err != nil {
		return nil, errors.Wrapf(err, "column '%v', id %v", column, id)
	}
	return val, nil
}

// GetID returns the id associated with val in column, allocating a new one if
// val hasn't been seen before.
func (m *MapTranslator) GetID(column string, val interface{}) (uint64, error) {
	return m.getColumnTranslator(column).GetID(val)
}

// MapColumnTranslator is an in-memory ColumnTranslator using a map and a
// slice.
type MapColumnTranslator struct {
	l   sync.RWMutex
	ids map[interface{}]uint64
	s   []interface{}
}

// NewMapColumnTranslator creates a new MapColumnTranslator.
func NewMapColumnTranslator() *MapColumnTranslator {
	return &MapColumnTranslator{
		ids: make(map[interface{}]uint64),
		s:   make([]interface{}, 0),
	}
}

// Get returns the value mapped to the given id.
func (m *MapColumnTranslator) Get(id uint64) (interface{}, error) {
	m.l.RLock()
	defer m.l.RUnlock()
	if id >= uint64(len(m.s)) {
		return nil, errors.Errorf("requested unknown id %d in MapColumnTranslator", id)
	}
	return m.s[id], nil
}

// GetID returns the id associated with val, allocating a new one if needed.
func (m *MapColumnTranslator) GetID(val interface{}) (uint64, error) {
	val, err := NormalizeValue(val)
	if err != nil {
		return 0, errors.Wrap(err, "normalizing value")
	}
	m.l.RLock()
	id, ok := m.ids[val]
	m.l.RUnlock()
	if ok {
		return id, nil
	}
	m.l.Lock()
	defer m.l.Unlock()
	if id, ok := m.ids[val]; ok {
		return id, nil
	}
	id = uint64(len(m.s))
	m.s = append(m.s, val)
	m.ids[val] = id
	return id, nil
}

// EncodeColumn label encodes column of ds through tr. Distinct values are
// assigned ids in LessValue order before any row is encoded, so the encoding
// does not depend on row order when tr starts out empty.
func EncodeColumn(tr Translator, ds *Dataset, column string) ([]uint64, error) {
	vals, err := ds.Column(column)
	if err != nil {
		return nil, err
	}
	distinct := make(map[interface{}]struct{})
	uniq := make([]interface{}, 0)
	for _, v := range vals {
		if _, ok := distinct[v]; !ok {
			distinct[v] = struct{}{}
			uniq = append(uniq, v)
		}
	}
	SortValues(uniq)
	ids := make(map[interface{}]uint64, len(uniq))
	for _, v := range uniq {
		id, err := tr.GetID(column, v)
		if err != nil {
			return nil, errors.Wrapf(err, "translating %v in %s", v, column)
		}
		ids[v] = id
	}
	ret := make([]uint64, len(vals))
	for i, v := range vals {
		ret[i] = ids[v]
	}
	return ret, nil
}
