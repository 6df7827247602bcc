//go:build integration

package integration

import (
	"net/http"
	"testing"
)

const testAPIKey = "integration-test-key"

func adminHeaders() map[string]string {
	return map[string]string{"X-API-Key": testAPIKey}
}

type postResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
	ViewCount int64  `json:"view_count"`
}

func TestAdmin_NoKey(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/admin/products", map[string]string{}, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdmin_WrongKey(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/admin/products", map[string]string{},
		map[string]string{"X-API-Key": "wrong-key"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdmin_CreateProduct(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/admin/products", map[string]any{
		"sku":            "BRW-KET-001",
		"name":           "Gooseneck Kettle",
		"description":    "Temperature controlled pour over kettle",
		"price":          "79.00",
		"stock_quantity": 10,
		"category_id":    "cat-brewing",
	}, adminHeaders())
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	created := decodeJSON[productResponse](t, resp)
	if created.Price != 79 {
		t.Errorf("price: got %v, want 79", created.Price)
	}

	// New product is publicly visible.
	getResp := doGet(t, "/api/products/"+created.ID, nil)
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 fetching created product, got %d", getResp.StatusCode)
	}
}

func TestAdmin_CreateProduct_MissingFields(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/admin/products", map[string]any{
		"sku":   "",
		"name":  "",
		"price": "5.00",
	}, adminHeaders())
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAdmin_DisableHidesProduct(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/admin/products", map[string]any{
		"sku":            "BRW-FLT-100",
		"name":           "Paper Filters 100pk",
		"price":          "5.50",
		"stock_quantity": 300,
		"category_id":    "cat-brewing",
	}, adminHeaders())
	created := decodeJSON[productResponse](t, resp)
	resp.Body.Close()

	disResp := doJSON(t, http.MethodPost, "/api/admin/products/"+created.ID+"/disable", nil, adminHeaders())
	disResp.Body.Close()
	if disResp.StatusCode != http.StatusNoContent {
		t.Fatalf("disable: expected 204, got %d", disResp.StatusCode)
	}

	getResp := doGet(t, "/api/products/"+created.ID, nil)
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for disabled product, got %d", getResp.StatusCode)
	}
}

func TestAdmin_BlogSlugAndPublish(t *testing.T) {
	// Two posts with the same title get distinct slugs.
	first := doJSON(t, http.MethodPost, "/api/admin/blog", map[string]string{
		"title": "Brew Guide: Pour Over",
		"body":  "Start with a medium-fine grind.",
	}, adminHeaders())
	post1 := decodeJSON[postResponse](t, first)
	first.Body.Close()

	second := doJSON(t, http.MethodPost, "/api/admin/blog", map[string]string{
		"title": "Brew Guide: Pour Over",
		"body":  "Revised edition.",
	}, adminHeaders())
	post2 := decodeJSON[postResponse](t, second)
	second.Body.Close()

	if post1.Slug == "" || post2.Slug == "" {
		t.Fatalf("expected non-empty slugs, got %q and %q", post1.Slug, post2.Slug)
	}
	if post1.Slug == post2.Slug {
		t.Fatalf("expected distinct slugs for same title, both %q", post1.Slug)
	}

	// Unpublished posts are not publicly readable.
	hiddenResp := doGet(t, "/api/blog/"+post1.Slug, nil)
	hiddenResp.Body.Close()
	if hiddenResp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unpublished post, got %d", hiddenResp.StatusCode)
	}

	pubResp := doJSON(t, http.MethodPost, "/api/admin/blog/"+post1.ID+"/publish", nil, adminHeaders())
	pubResp.Body.Close()
	if pubResp.StatusCode != http.StatusNoContent {
		t.Fatalf("publish: expected 204, got %d", pubResp.StatusCode)
	}

	readResp := doGet(t, "/api/blog/"+post1.Slug, nil)
	defer readResp.Body.Close()
	if readResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for published post, got %d", readResp.StatusCode)
	}

	read := decodeJSON[postResponse](t, readResp)
	if read.Body == "" {
		t.Error("expected post body in read response")
	}
	if read.ViewCount < 1 {
		t.Errorf("view count: got %d, want >= 1", read.ViewCount)
	}
}

func TestAdmin_AdvanceOrder(t *testing.T) {
	user := registerUser(t, "shopper-order-admin")
	token := newCartToken(t)
	addToCart(t, token, "prod-v60-02", 1)

	coResp := doJSON(t, http.MethodPost, "/api/checkout", checkoutRequest{
		Method: "bank_transfer",
		NewAddress: &addressRequest{
			RecipientName: "Integration Shopper",
			Line1:         "3 Test Street",
			City:          "Testville",
			PostalCode:    "12345",
			Country:       "NL",
		},
	}, map[string]string{"X-User-ID": user.ID, "X-Cart-Token": token})
	order := decodeJSON[orderResponse](t, coResp)
	coResp.Body.Close()

	advResp := doJSON(t, http.MethodPost, "/api/admin/orders/"+order.ID+"/status", map[string]string{
		"status": "processing",
	}, adminHeaders())
	advResp.Body.Close()
	if advResp.StatusCode != http.StatusNoContent {
		t.Fatalf("advance: expected 204, got %d", advResp.StatusCode)
	}

	// Skipping straight to delivered is rejected.
	badResp := doJSON(t, http.MethodPost, "/api/admin/orders/"+order.ID+"/status", map[string]string{
		"status": "delivered",
	}, adminHeaders())
	defer badResp.Body.Close()
	if badResp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for invalid transition, got %d", badResp.StatusCode)
	}
}

func TestContact_SubmitAndRead(t *testing.T) {
	subResp := doJSON(t, http.MethodPost, "/api/contact", map[string]string{
		"name":    "Curious Customer",
		"email":   "curious@example.com",
		"subject": "Grind size",
		"body":    "Which grind works for a moka pot?",
	}, nil)
	defer subResp.Body.Close()

	if subResp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d", subResp.StatusCode)
	}

	listResp := doGet(t, "/api/admin/contact/unread", adminHeaders())
	defer listResp.Body.Close()
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("unread: expected 200, got %d", listResp.StatusCode)
	}
}
