package main

import (
	"context"

	pagepdf "github.com/alnah/go-pagepdf"
)

// CLIConverter is the interface for the conversion service.
type CLIConverter interface {
	Convert(ctx context.Context, input pagepdf.Input) (*pagepdf.Result, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*pagepdf.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (CLIConverter, error)
	Release(CLIConverter)
	Size() int
	Close() error
}

// converterPool adapts pagepdf.ConverterPool to Pool.
type converterPool struct {
	pool *pagepdf.ConverterPool
}

// newConverterPool creates a pool of up to size converters.
func newConverterPool(size int, opts ...pagepdf.Option) Pool {
	return &converterPool{pool: pagepdf.NewConverterPool(size, opts...)}
}

func (p *converterPool) Acquire() (CLIConverter, error) {
	conv, err := p.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (p *converterPool) Release(c CLIConverter) {
	if conv, ok := c.(*pagepdf.Converter); ok {
		p.pool.Release(conv)
	}
}

func (p *converterPool) Size() int    { return p.pool.Size() }
func (p *converterPool) Close() error { return p.pool.Close() }
