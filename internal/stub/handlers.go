package stub

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"

	"github.com/jredh-dev/souk/internal/client"
)

// Handler serves the stub directory API.
type Handler struct {
	store      *Store
	signingKey []byte
}

// NewHandler wraps a store. signingKey signs the stub's session tokens.
func NewHandler(s *Store, signingKey []byte) *Handler {
	return &Handler{store: s, signingKey: signingKey}
}

// Routes returns the API router. Callers mount it at /api/v1 to match the
// production path layout.
func (h *Handler) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Post("/user/auth", h.Auth)
	r.Post("/user/create", h.CreateUser)
	r.Get("/user/userId/{id}", h.GetUser)

	r.Route("/listing", func(r chi.Router) {
		r.Get("/date/{type}", h.ListingsByDate)
		r.Get("/date/search/{query}/{type}", h.ListingsByDateAndSearch)
		r.Get("/distance/{lat}/{lng}/{radius}/{type}", h.ListingsByDistance)
		r.Get("/distance/{lat}/{lng}/{radius}/{type}/{query}", h.ListingsByDistanceAndSearch)
		r.Get("/listingId/{id}", h.GetListing)
		r.Get("/listings/user/{userID}/{type}", h.ListingsByUser)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/create", h.CreateListing)
			r.Put("/update/{id}", h.UpdateListing)
			r.Delete("/delete/{id}", h.DeleteListing)
		})
	})

	r.Get("/image/listing/{id}", h.ImagesByListing)
	r.Get("/image/user/{id}", h.ImagesByUser)

	r.Route("/transaction", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/create", h.CreateTransaction)
		r.Get("/transactionId/{id}", h.GetTransaction)
		r.Get("/offered/{id}/{status}", h.TransactionsByOffered)
		r.Get("/offering/{id}/{status}", h.TransactionsByOffering)
		r.Get("/listing/{id}/{status}", h.TransactionsByListing)
		r.Get("/contract/{id}", h.Contract)
		r.Put("/update/{id}", h.UpdateTransaction)
		r.Delete("/delete/{id}", h.DeleteTransaction)
	})

	return r
}

// --- auth ---

type ctxKey int

const ctxUserID ctxKey = 0

func (h *Handler) issueToken(userID int) (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.signingKey)
}

func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		token := strings.TrimPrefix(raw, "Bearer ")
		if raw == "" || token == raw {
			jsonError(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		claims := &jwt.RegisteredClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return h.signingKey, nil
		})
		if err != nil || !parsed.Valid {
			jsonError(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		userID, err := strconv.Atoi(claims.Subject)
		if err != nil {
			jsonError(w, "invalid token subject", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserID, userID)))
	})
}

func sessionUserID(r *http.Request) int {
	id, _ := r.Context().Value(ctxUserID).(int)
	return id
}

// Auth handles POST /user/auth.
func (h *Handler) Auth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phone_number"`
		Password    string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, ok := h.store.Authenticate(req.PhoneNumber, req.Password)
	if !ok {
		jsonError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.issueToken(user.UserID)
	if err != nil {
		jsonError(w, "could not issue token", http.StatusInternalServerError)
		return
	}

	log.Printf("auth: user=%d phone=%s", user.UserID, req.PhoneNumber)
	jsonOK(w, http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

// CreateUser handles POST /user/create.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		client.User
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PhoneNumber == "" || req.Password == "" {
		jsonError(w, "phone_number and password are required", http.StatusBadRequest)
		return
	}
	user := h.store.AddUser(req.User, req.Password)
	jsonOK(w, http.StatusCreated, user)
}

// GetUser handles GET /user/userId/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "invalid user id", http.StatusBadRequest)
		return
	}
	user, ok := h.store.UserByID(id)
	if !ok {
		jsonError(w, "user not found", http.StatusNotFound)
		return
	}
	jsonOK(w, http.StatusOK, user)
}

// --- listings ---

// ListingsByDate handles GET /listing/date/{type}.
func (h *Handler) ListingsByDate(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, http.StatusOK, h.store.ListingsByDate(chi.URLParam(r, "type")))
}

// ListingsByDateAndSearch handles GET /listing/date/search/{query}/{type}.
func (h *Handler) ListingsByDateAndSearch(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, http.StatusOK,
		h.store.ListingsByDateAndText(chi.URLParam(r, "query"), chi.URLParam(r, "type")))
}

// distanceParams parses the {lat}/{lng}/{radius} path segments. Latitude
// first is the canonical order on the wire.
func distanceParams(r *http.Request) (lat, lng float64, radiusKm int, err error) {
	lat, err = strconv.ParseFloat(chi.URLParam(r, "lat"), 64)
	if err != nil {
		return
	}
	lng, err = strconv.ParseFloat(chi.URLParam(r, "lng"), 64)
	if err != nil {
		return
	}
	radiusKm, err = strconv.Atoi(chi.URLParam(r, "radius"))
	return
}

// ListingsByDistance handles GET /listing/distance/{lat}/{lng}/{radius}/{type}.
func (h *Handler) ListingsByDistance(w http.ResponseWriter, r *http.Request) {
	lat, lng, radiusKm, err := distanceParams(r)
	if err != nil {
		jsonError(w, "invalid distance parameters", http.StatusBadRequest)
		return
	}
	jsonOK(w, http.StatusOK,
		h.store.ListingsByDistance(lat, lng, radiusKm, chi.URLParam(r, "type")))
}

// ListingsByDistanceAndSearch handles
// GET /listing/distance/{lat}/{lng}/{radius}/{type}/{query}.
func (h *Handler) ListingsByDistanceAndSearch(w http.ResponseWriter, r *http.Request) {
	lat, lng, radiusKm, err := distanceParams(r)
	if err != nil {
		jsonError(w, "invalid distance parameters", http.StatusBadRequest)
		return
	}
	jsonOK(w, http.StatusOK,
		h.store.ListingsByDistanceAndText(lat, lng, radiusKm,
			chi.URLParam(r, "type"), chi.URLParam(r, "query")))
}

// GetListing handles GET /listing/listingId/{id}.
func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "invalid listing id", http.StatusBadRequest)
		return
	}
	listing, ok := h.store.ListingByID(id)
	if !ok {
		jsonError(w, "listing not found", http.StatusNotFound)
		return
	}
	jsonOK(w, http.StatusOK, listing)
}

// ListingsByUser handles GET /listing/listings/user/{userID}/{type}.
func (h *Handler) ListingsByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		jsonError(w, "invalid user id", http.StatusBadRequest)
		return
	}
	jsonOK(w, http.StatusOK, h.store.ListingsByUser(userID, chi.URLParam(r, "type")))
}

// CreateListing handles POST /listing/create. The owner is the session user.
func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var listing client.Listing
	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if listing.Title == "" {
		jsonError(w, "title is required", http.StatusBadRequest)
		return
	}
	listing.UserID = sessionUserID(r)
	created := h.store.AddListing(listing)
	log.Printf("listing created: id=%d user=%d type=%s", created.ListingID, created.UserID, created.Type)
	jsonOK(w, http.StatusCreated, created)
}

// UpdateListing handles PUT /listing/update/{id}. Owner only.
func (h *Handler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "invalid listing id", http.StatusBadRequest)
		return
	}
	cur, ok := h.store.ListingByID(id)
	if !ok {
		jsonError(w, "listing not found", http.StatusNotFound)
		return
	}
	if cur.UserID != sessionUserID(r) {
		jsonError(w, "not the listing owner", http.StatusForbidden)
		return
	}

	var listing client.Listing
	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.store.UpdateListing(id, listing)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteListing handles DELETE /listing/delete/{id}. Owner only.
func (h *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "invalid listing id", http.StatusBadRequest)
		return
	}
	cur, ok := h.store.ListingByID(id)
	if !ok {
		jsonError(w, "listing not found", http.StatusNotFound)
		return
	}
	if cur.UserID != sessionUserID(r) {
		jsonError(w, "not the listing owner", http.StatusForbidden)
		return
	}
	h.store.DeleteListing(id)
	log.Printf("listing deleted: id=%d user=%d", id, cur.UserID)
	w.WriteHeader(http.StatusNoContent)
}

// --- images ---

// ImagesByListing handles GET /image/listing/{id}.
func (h *Handler) ImagesByListing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "invalid listing id", http.StatusBadRequest)
		return
	}
	jsonOK(w, http.StatusOK, map[string]interface{}{"images": h.store.ImagesByListing(id)})
}

// ImagesByUser handles GET /image/user/{id}.
func (h *Handler) ImagesByUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "invalid user id", http.StatusBadRequest)
		return
	}
	var images []client.Image
	for _, l := range h.store.ListingsByUser(id, client.TypeAny) {
		images = append(images, h.store.ImagesByListing(l.ListingID)...)
	}
	if images == nil {
		images = []client.Image{}
	}
	jsonOK(w, http.StatusOK, map[string]interface{}{"images": images})
}

// --- transactions ---

// CreateTransaction handles POST /transaction/create. The initiating
// (offered) user is always the session user.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx client.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	listing, ok := h.store.ListingByID(tx.ListingID)
	if !ok {
		jsonError(w, "listing not found", http.StatusNotFound)
		return
	}
	tx.UserOfferedID = sessionUserID(r)
	tx.UserOfferingID = listing.UserID
	tx.Status = client.StatusPending
	created := h.store.AddTransaction(tx)
	log.Printf("transaction created: id=%d listing=%d offered=%d offering=%d",
		created.TransactionID, created.ListingID, created.UserOfferedID, created.UserOfferingID)
	jsonOK(w, http.StatusCreated, created)
}

func (h *Handler) transactionForParty(w http.ResponseWriter, r *http.Request) (client.Transaction, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "invalid transaction id", http.StatusBadRequest)
		return client.Transaction{}, false
	}
	tx, ok := h.store.TransactionByID(id)
	if !ok {
		jsonError(w, "transaction not found", http.StatusNotFound)
		return client.Transaction{}, false
	}
	uid := sessionUserID(r)
	if tx.UserOfferedID != uid && tx.UserOfferingID != uid {
		jsonError(w, "not a party to this transaction", http.StatusForbidden)
		return client.Transaction{}, false
	}
	return tx, true
}

// GetTransaction handles GET /transaction/transactionId/{id}. Parties only.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.transactionForParty(w, r)
	if !ok {
		return
	}
	jsonOK(w, http.StatusOK, tx)
}

// TransactionsByOffered handles GET /transaction/offered/{id}/{status}.
func (h *Handler) TransactionsByOffered(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "invalid user id", http.StatusBadRequest)
		return
	}
	jsonOK(w, http.StatusOK, h.store.TransactionsByParty(id, "offered", chi.URLParam(r, "status")))
}

// TransactionsByOffering handles GET /transaction/offering/{id}/{status}.
func (h *Handler) TransactionsByOffering(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "invalid user id", http.StatusBadRequest)
		return
	}
	jsonOK(w, http.StatusOK, h.store.TransactionsByParty(id, "offering", chi.URLParam(r, "status")))
}

// TransactionsByListing handles GET /transaction/listing/{id}/{status}.
func (h *Handler) TransactionsByListing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "invalid listing id", http.StatusBadRequest)
		return
	}
	jsonOK(w, http.StatusOK, h.store.TransactionsByListing(id, chi.URLParam(r, "status")))
}

// UpdateTransaction handles PUT /transaction/update/{id}. Parties only.
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.transactionForParty(w, r)
	if !ok {
		return
	}
	var update client.Transaction
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.store.UpdateTransaction(tx.TransactionID, update)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTransaction handles DELETE /transaction/delete/{id}. Only the
// initiator may withdraw an offer.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.transactionForParty(w, r)
	if !ok {
		return
	}
	if tx.UserOfferedID != sessionUserID(r) {
		jsonError(w, "only the initiating party may withdraw", http.StatusForbidden)
		return
	}
	h.store.DeleteTransaction(tx.TransactionID)
	w.WriteHeader(http.StatusNoContent)
}

// Contract handles GET /transaction/contract/{id}. Parties only.
func (h *Handler) Contract(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.transactionForParty(w, r)
	if !ok {
		return
	}
	listing, _ := h.store.ListingByID(tx.ListingID)
	offered, _ := h.store.UserByID(tx.UserOfferedID)
	offering, _ := h.store.UserByID(tx.UserOfferingID)

	contract := "SERVICE AGREEMENT\n\n" +
		"Listing: " + listing.Title + "\n" +
		"Provider: " + offering.Name() + "\n" +
		"Client: " + offered.Name() + "\n" +
		"Price: " + strconv.FormatFloat(tx.Price, 'f', 2, 64) + " " + tx.CurrencyCode + "\n" +
		"Period: " + tx.JobStartDate + " to " + tx.JobEndDate + "\n" +
		"Status: " + tx.Status + "\n"
	jsonOK(w, http.StatusOK, map[string]string{"contract": contract})
}

// --- helpers ---

func jsonOK(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
