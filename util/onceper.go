package util

import (
	"fmt"
	"sync"
)

// OncePer computes a value at most once per key. Later callers get
// the cached value even if their compute function differs.
type OncePer struct {
	values     sync.Map
	valuesLock sync.Mutex
}

func (once *OncePer) Once(key interface{}, value func() interface{}) interface{} {
	if v, ok := once.values.Load(key); ok {
		return v
	}

	once.valuesLock.Lock()
	defer once.valuesLock.Unlock()

	if v, ok := once.values.Load(key); ok {
		return v
	}

	v := value()
	once.values.Store(key, v)

	return v
}

func (once *OncePer) Get(key interface{}) interface{} {
	v, ok := once.values.Load(key)
	if !ok {
		panic(fmt.Errorf("Get() called before Once()"))
	}

	return v
}

func (once *OncePer) OnceString(key interface{}, value func() string) string {
	return once.Once(key, func() interface{} { return value() }).(string)
}

func (once *OncePer) OnceStringSlice(key interface{}, value func() []string) []string {
	return once.Once(key, func() interface{} { return value() }).([]string)
}
