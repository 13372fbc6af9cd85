package cachekey

import (
	"errors"
	"net/url"
	"testing"
)

var orderable = []string{"id", "name", "created_at"}

func TestEmptyQueryIsDefault(t *testing.T) {
	p, err := ParseListParams(url.Values{}, orderable)
	if err != nil {
		t.Fatal(err)
	}
	if p != DefaultListParams() {
		t.Fatalf("Params are %v", p)
	}
}

func TestEquivalentQueriesGiveEqualKeys(t *testing.T) {
	explicit, _ := url.ParseQuery("limit=10&offset=0&order_by=updated_at&order=DESC")
	implicit, _ := url.ParseQuery("")
	a, err := ParseListParams(explicit, orderable)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseListParams(implicit, orderable)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("%v != %v", a, b)
	}
	if (ShopList{ShopID: 1, ListParams: a}) != (ShopList{ShopID: 1, ListParams: b}) {
		t.Fatal("Composite keys differ")
	}
}

func TestParseListParams(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    ListParams
		wantErr bool
	}{
		{"limit", "limit=5", ListParams{5, 0, "updated_at", Desc}, false},
		{"offset", "offset=20", ListParams{10, 20, "updated_at", Desc}, false},
		{"order by name asc", "order_by=name&order=asc", ListParams{10, 0, "name", Asc}, false},
		{"mixed case order", "order=Asc", ListParams{10, 0, "updated_at", Asc}, false},
		{"limit zero", "limit=0", ListParams{}, true},
		{"limit too big", "limit=1000", ListParams{}, true},
		{"limit not a number", "limit=ten", ListParams{}, true},
		{"negative offset", "offset=-1", ListParams{}, true},
		{"unknown column", "order_by=api_key", ListParams{}, true},
		{"injection", "order_by=id%3BDROP%20TABLE%20shops", ListParams{}, true},
		{"bad order", "order=sideways", ListParams{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := ParseListParams(q, orderable)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidListParams) {
					t.Fatalf("Expected ErrInvalidListParams, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("Got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderClause(t *testing.T) {
	p := ListParams{Limit: 1, OrderBy: "name", Order: Asc}
	if c := p.OrderClause(); c != "name ASC" {
		t.Fatalf("Order clause is %s", c)
	}
}

func TestShopListString(t *testing.T) {
	k := ShopList{ShopID: 3, ListParams: DefaultListParams()}
	if s := k.String(); s != "shop_id=3&limit=10&offset=0&order_by=updated_at&order=desc" {
		t.Fatalf("Key is %s", s)
	}
}
