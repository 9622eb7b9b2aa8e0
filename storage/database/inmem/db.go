package inmemdb

import (
	"sync"

	"github.com/sogrim/technion-sogrim-sub000/core/student"
)

type (
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
