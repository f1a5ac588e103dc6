package dummydb

import (
	"sync"

	"github.com/florescendo/talentos/core/student"
)

type (
	// DB is an in-memory store for tests and local experiments.
	DB struct {
		student *studentTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}
)

func Open() *DB {
	return &DB{
		student: &studentTable{table: make(map[string]*student.Student)},
	}
}
