package products

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"moia/internal/api"
)

type scriptedClient struct {
	mu        sync.Mutex
	count     int
	found     []api.Product
	searchErr error
	editMsg   string
	editErr   error
	deleteMsg string
	deleteErr error

	searches  []api.ProductQuery
	deleted   []int
	editedID  int
	editedPay api.Product
}

func (c *scriptedClient) ProductCount(ctx context.Context) (int, error) {
	return c.count, nil
}

func (c *scriptedClient) SearchProducts(ctx context.Context, q api.ProductQuery) ([]api.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches = append(c.searches, q)
	if c.searchErr != nil {
		return nil, c.searchErr
	}
	return append([]api.Product(nil), c.found...), nil
}

func (c *scriptedClient) EditProduct(ctx context.Context, id int, p api.Product) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editedID = id
	c.editedPay = p
	return c.editMsg, c.editErr
}

func (c *scriptedClient) DeleteProduct(ctx context.Context, id int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, id)
	return c.deleteMsg, c.deleteErr
}

func (c *scriptedClient) searchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.searches)
}

func (c *scriptedClient) lastSearch() api.ProductQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searches[len(c.searches)-1]
}

func TestSearchNowReplacesResults(t *testing.T) {
	client := &scriptedClient{
		found: []api.Product{{ID: 1, Name: "camisa"}, {ID: 2, Name: "pantalón"}},
	}
	svc := NewService(client, zerolog.Nop())

	got, err := svc.SearchNow(context.Background(), api.ProductQuery{Name: "ca"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "camisa" {
		t.Errorf("results = %+v", got)
	}
	if r := svc.Results(); len(r) != 2 {
		t.Errorf("held results = %+v", r)
	}
}

func TestSearchBurstCollapsesToLastQuery(t *testing.T) {
	client := &scriptedClient{found: []api.Product{{ID: 1, Name: "camisa"}}}
	svc := NewService(client, zerolog.Nop())
	defer svc.Close()

	delivered := make(chan []api.Product, 1)
	svc.SetOnResults(func(ps []api.Product) { delivered <- ps })

	svc.Search(api.ProductQuery{Name: "c"})
	svc.Search(api.ProductQuery{Name: "ca"})
	svc.Search(api.ProductQuery{Name: "cam"})

	select {
	case ps := <-delivered:
		if len(ps) != 1 {
			t.Errorf("delivered = %+v", ps)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debounced search never delivered")
	}

	if got := client.searchCount(); got != 1 {
		t.Errorf("backend searches = %d, want 1 for the burst", got)
	}
	if q := client.lastSearch(); q.Name != "cam" {
		t.Errorf("surviving query = %q, want the last one", q.Name)
	}
}

func TestDebouncedFailureKeepsResults(t *testing.T) {
	client := &scriptedClient{found: []api.Product{{ID: 1, Name: "camisa"}}}
	svc := NewService(client, zerolog.Nop())
	defer svc.Close()

	if _, err := svc.SearchNow(context.Background(), api.ProductQuery{}); err != nil {
		t.Fatal(err)
	}

	client.mu.Lock()
	client.searchErr = errors.New("backend down")
	client.mu.Unlock()

	svc.Search(api.ProductQuery{Name: "x"})
	waitForSearches(t, client, 2)

	if got := svc.Results(); len(got) != 1 {
		t.Errorf("failed search must keep prior results, got %+v", got)
	}
}

func waitForSearches(t *testing.T, client *scriptedClient, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if client.searchCount() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d searches", n)
}

func TestEditPatchesResultSet(t *testing.T) {
	client := &scriptedClient{
		found:   []api.Product{{ID: 1, Name: "camisa"}, {ID: 2, Name: "falda"}},
		editMsg: "Producto actualizado",
	}
	svc := NewService(client, zerolog.Nop())
	if _, err := svc.SearchNow(context.Background(), api.ProductQuery{}); err != nil {
		t.Fatal(err)
	}

	msg, err := svc.Edit(context.Background(), 2, api.Product{Name: "falda larga"})
	if err != nil {
		t.Fatal(err)
	}
	if msg != "Producto actualizado" {
		t.Errorf("message = %q", msg)
	}
	r := svc.Results()
	if r[1].Name != "falda larga" || r[1].ID != 2 {
		t.Errorf("results after edit = %+v", r)
	}
}

func TestEditSurfacesFieldError(t *testing.T) {
	client := &scriptedClient{
		editErr: &api.FieldError{Field: "name", Message: "nombre duplicado", Status: 409},
	}
	svc := NewService(client, zerolog.Nop())

	_, err := svc.Edit(context.Background(), 1, api.Product{Name: "dup"})
	var fe *api.FieldError
	if !errors.As(err, &fe) || fe.Status != 409 {
		t.Fatalf("err = %v, want the conflict field error", err)
	}
}

func TestDeleteIsOptimistic(t *testing.T) {
	client := &scriptedClient{
		found:     []api.Product{{ID: 1}, {ID: 2}},
		deleteErr: errors.New("backend refused"),
	}
	svc := NewService(client, zerolog.Nop())
	if _, err := svc.SearchNow(context.Background(), api.ProductQuery{}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Delete(context.Background(), 1); err == nil {
		t.Fatal("expected the backend failure to surface")
	}
	r := svc.Results()
	if len(r) != 1 || r[0].ID != 2 {
		t.Errorf("results after optimistic delete = %+v", r)
	}
	client.mu.Lock()
	deleted := append([]int(nil), client.deleted...)
	client.mu.Unlock()
	if len(deleted) != 1 || deleted[0] != 1 {
		t.Errorf("delete calls = %v", deleted)
	}
}
