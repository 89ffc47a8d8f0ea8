package oml

import (
	"fmt"
	"strconv"
	"time"

	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// FunEval evaluates a named time builtin: Now::time, Now::date,
// Now::hour. Now::date returns YYYYMMDD as an integer; Now::hour
// returns YYYYMMDDHH (§4.7 "Fun").
type FunEval struct {
	Name string
}

func (f FunEval) ExtractOne(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.DataField, error) {
	storage, err := f.ExtractStorage(target, src, dst)
	if err != nil || storage == nil {
		return nil, err
	}
	df := storage.AsField()
	return &df, nil
}

func (f FunEval) ExtractStorage(target EvalTarget, src data.DataRecordRef, dst *data.DataRecord) (*data.FieldStorage, error) {
	name := target.NameOr("")
	now := time.Now()
	var v data.DataValue
	switch f.Name {
	case "Now::time":
		v = data.TimeVal(now)
	case "Now::date":
		n, err := strconv.ParseInt(now.Format("20060102"), 10, 64)
		if err != nil {
			return nil, err
		}
		v = data.Integer(n)
	case "Now::hour":
		n, err := strconv.ParseInt(now.Format("2006010215"), 10, 64)
		if err != nil {
			return nil, err
		}
		v = data.Integer(n)
	default:
		return nil, fmt.Errorf("oml: unknown Fun builtin %q", f.Name)
	}
	result := data.Owned(data.DataField{Name: name, Meta: data.TypeAuto, Value: v})
	return &result, nil
}
