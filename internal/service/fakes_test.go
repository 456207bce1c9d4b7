package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/chiefcousin/toybox/internal/zoho"
)

type fakeItems struct {
	mu       sync.Mutex
	pages    [][]zoho.Item
	items    map[string]zoho.Item
	listErr  error
	failPage int
	listed   []int
	gets     int32
	// block, when set, holds GetItem until closed
	block chan struct{}
}

func (f *fakeItems) ListItems(_ context.Context, page, perPage int) (*zoho.ItemsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, page)
	if f.listErr != nil && page == f.failPage {
		return nil, f.listErr
	}
	if page > len(f.pages) {
		return &zoho.ItemsResponse{}, nil
	}
	return &zoho.ItemsResponse{
		Items: f.pages[page-1],
		PageContext: &zoho.PageContext{
			Page:        page,
			PerPage:     perPage,
			HasMorePage: page < len(f.pages),
		},
	}, nil
}

func (f *fakeItems) GetItem(_ context.Context, itemID string) (*zoho.Item, error) {
	atomic.AddInt32(&f.gets, 1)
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemID]
	if !ok {
		return nil, fmt.Errorf("item %s not found", itemID)
	}
	return &item, nil
}

type fakeConnection bool

func (c fakeConnection) IsConnected(context.Context) bool { return bool(c) }

type fakeSalesOrders struct {
	mu       sync.Mutex
	payloads []zoho.CreateSalesOrderPayload
	err      error
}

func (f *fakeSalesOrders) CreateSalesOrder(_ context.Context, p zoho.CreateSalesOrderPayload) (*zoho.SalesOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.payloads = append(f.payloads, p)
	n := len(f.payloads)
	return &zoho.SalesOrder{
		SalesOrderID:     fmt.Sprintf("so-%d", n),
		SalesOrderNumber: fmt.Sprintf("SO-%05d", n),
	}, nil
}

func (f *fakeSalesOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}
