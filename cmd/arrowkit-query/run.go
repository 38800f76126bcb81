package main

import (
	"context"
	"fmt"

	"github.com/arrowkit/arrowkit/src/engine"
	"github.com/arrowkit/arrowkit/src/exec"
	"github.com/arrowkit/arrowkit/src/translator"
)

func runCount(path, col string, threshold float64, cfg engine.Config) error {
	store, err := loadCSVSnapshot(path)
	if err != nil {
		return err
	}
	e := engine.New("data", store, cfg)
	q := translator.NewBuilder().Where(translator.Gt(col, threshold)).Build()

	res, err := e.Query(context.Background(), q, exec.NewCancellationToken())
	if err != nil {
		return err
	}
	fmt.Println(res.Rows.Selection.Len())
	return nil
}

func runSum(path, col string, cfg engine.Config) error {
	store, err := loadCSVSnapshot(path)
	if err != nil {
		return err
	}
	_, colSchema, err := store.Schema().LocateColumn(col)
	if err != nil {
		return err
	}

	e := engine.New("data", store, cfg)
	q := translator.NewBuilder().Select(translator.Col(col, col, colSchema.Dtype)).Sum()

	res, err := e.Query(context.Background(), q, exec.NewCancellationToken())
	if err != nil {
		return err
	}
	fmt.Println(res.Scalar.FloatSum)
	return nil
}
