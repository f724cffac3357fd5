// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package leveldb stores label encodings in LevelDB, one database per column.
package leveldb

import (
	"encoding/binary"
	"path/filepath"
	"sync"

	"github.com/pilosa/bankdata"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Keys in a column database are prefixed by what they map from.
const (
	idPrefix  = 'i'
	valPrefix = 'v'
)

var _ bankdata.Translator = &Translator{}

// Translator is a bankdata.Translator which keeps a ColumnTranslator for each
// column under a common directory. Column databases are opened on first use.
type Translator struct {
	lock    sync.RWMutex
	dirname string
	columns map[string]*ColumnTranslator
}

// ColumnTranslator is a bankdata.ColumnTranslator which stores both
// directions of the id/value mapping in a single LevelDB database.
type ColumnTranslator struct {
	db *leveldb.DB

	// mu serializes id allocation. Lookups of known values don't take it.
	mu     sync.Mutex
	nextID uint64
}

var _ bankdata.ColumnTranslator = &ColumnTranslator{}

// NewTranslator opens a ColumnTranslator under dirname for each of columns.
// Other columns are opened as they are asked for.
func NewTranslator(dirname string, columns ...string) (*Translator, error) {
	lt := &Translator{
		dirname: dirname,
		columns: make(map[string]*ColumnTranslator),
	}
	for _, column := range columns {
		if _, err := lt.column(column); err != nil {
			lt.Close()
			return nil, err
		}
	}
	return lt, nil
}

// Close closes every open column database.
func (lt *Translator) Close() error {
	lt.lock.Lock()
	defer lt.lock.Unlock()
	var errs errorList
	for c, lct := range lt.columns {
		if err := lct.Close(); err != nil {
			errs = append(errs, errors.Wrapf(err, "column %v", c))
		}
	}
	lt.columns = make(map[string]*ColumnTranslator)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (lt *Translator) column(column string) (*ColumnTranslator, error) {
	lt.lock.RLock()
	lct, ok := lt.columns[column]
	lt.lock.RUnlock()
	if ok {
		return lct, nil
	}
	lt.lock.Lock()
	defer lt.lock.Unlock()
	if lct, ok := lt.columns[column]; ok {
		return lct, nil
	}
	lct, err := NewColumnTranslator(filepath.Join(lt.dirname, column))
	if err != nil {
		return nil, errors.Wrapf(err, "opening column %v", column)
	}
	lt.columns[column] = lct
	return lct, nil
}

// Get returns the value mapped to id in column.
func (lt *Translator) Get(column string, id uint64) (interface{}, error) {
	lct, err := lt.column(column)
	if err != nil {
		return nil, err
	}
	return lct.Get(id)
}

// GetID returns the id of val in column, allocating the next one if val has
// not been seen before.
func (lt *Translator) GetID(column string, val interface{}) (uint64, error) {
	lct, err := lt.column(column)
	if err != nil {
		return 0, err
	}
	return lct.GetID(val)
}

// NewColumnTranslator opens (creating if needed) the database at path. Ids
// continue from the highest id already stored.
func NewColumnTranslator(path string) (*ColumnTranslator, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %v", path)
	}
	lct := &ColumnTranslator{db: db}
	lct.nextID, err = lastID(db)
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "reading last id from %v", path)
	}
	return lct, nil
}

// lastID returns one past the largest id stored in db. Ids are big endian so
// the last id key in iteration order is the largest.
func lastID(db *leveldb.DB) (uint64, error) {
	iter := db.NewIterator(util.BytesPrefix([]byte{idPrefix}), nil)
	defer iter.Release()
	var next uint64
	if iter.Last() {
		key := iter.Key()
		if len(key) != 9 {
			return 0, errors.Errorf("malformed id key %x", key)
		}
		next = binary.BigEndian.Uint64(key[1:]) + 1
	}
	return next, iter.Error()
}

// Close closes the column database.
func (lct *ColumnTranslator) Close() error {
	return errors.Wrap(lct.db.Close(), "closing leveldb")
}

// Get returns the value mapped to id.
func (lct *ColumnTranslator) Get(id uint64) (interface{}, error) {
	data, err := lct.db.Get(idKey(id), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching id %d", id)
	}
	return bankdata.ValueFromBytes(data)
}

// GetID returns the id of val, allocating the next one if val has not been
// seen before.
func (lct *ColumnTranslator) GetID(val interface{}) (uint64, error) {
	nval, err := bankdata.NormalizeValue(val)
	if err != nil {
		return 0, errors.Wrap(err, "normalizing value")
	}
	valBytes, err := bankdata.ValueToBytes(nval)
	if err != nil {
		return 0, errors.Wrap(err, "encoding value")
	}
	vkey := append([]byte{valPrefix}, valBytes...)

	// most values are already mapped after the first pass over a column
	if id, ok, err := lct.lookup(vkey); err != nil || ok {
		return id, err
	}

	lct.mu.Lock()
	defer lct.mu.Unlock()
	if id, ok, err := lct.lookup(vkey); err != nil || ok {
		return id, err
	}
	id := lct.nextID
	ikey := idKey(id)
	batch := new(leveldb.Batch)
	batch.Put(ikey, valBytes)
	batch.Put(vkey, ikey[1:])
	if err := lct.db.Write(batch, nil); err != nil {
		return 0, errors.Wrapf(err, "storing id %d", id)
	}
	lct.nextID++
	return id, nil
}

func (lct *ColumnTranslator) lookup(vkey []byte) (uint64, bool, error) {
	data, err := lct.db.Get(vkey, nil)
	if err == leveldb.ErrNotFound {
		return 0, false, nil
	} else if err != nil {
		return 0, false, errors.Wrap(err, "reading value key")
	}
	if len(data) != 8 {
		return 0, false, errors.Errorf("malformed id %x", data)
	}
	return binary.BigEndian.Uint64(data), true, nil
}

func idKey(id uint64) []byte {
	key := make([]byte, 9)
	key[0] = idPrefix
	binary.BigEndian.PutUint64(key[1:], id)
	return key
}

type errorList []error

func (errs errorList) Error() string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range errs {
		msg += "\n\t" + err.Error()
	}
	return msg
}
