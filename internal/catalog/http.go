// Copyright (c) 2026 Petbox. All rights reserved.

package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/petbox/petbox-server/internal/platform/request"
	"github.com/petbox/petbox-server/internal/platform/respond"
	"github.com/petbox/petbox-server/pkg/slug"
)

// Handler binds the catalog repository to the HTTP transport.
//
// Reads go straight to the repository; there is no service layer because
// there are no business rules to apply.
type Handler struct {
	repository Repository
}

// NewHandler creates the catalog HTTP handler.
func NewHandler(repository Repository) *Handler {
	return &Handler{repository: repository}
}

// ProductRoutes mounts the product endpoints.
func (handler *Handler) ProductRoutes(router chi.Router) {
	router.Get("/", handler.handleListProducts)
	router.Get("/{slug}", handler.handleGetProduct)
}

// StoreRoutes mounts the store-location endpoints.
func (handler *Handler) StoreRoutes(router chi.Router) {
	router.Get("/", handler.handleListStores)
	router.Get("/{code}", handler.handleGetStore)
}

func (handler *Handler) handleListProducts(writer http.ResponseWriter, request *http.Request) {
	category := request.URL.Query().Get("category")
	limit, _ := strconv.Atoi(request.URL.Query().Get("limit"))

	products, err := handler.repository.ListProducts(request.Context(), category, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, products)
}

func (handler *Handler) handleGetProduct(writer http.ResponseWriter, request *http.Request) {
	// Normalize the path segment so mixed-case or accented URLs still hit
	// the canonical slug.
	productSlug := slug.Make(requestutil.Param(request, "slug"))

	product, err := handler.repository.GetProductBySlug(request.Context(), productSlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, product)
}

func (handler *Handler) handleListStores(writer http.ResponseWriter, request *http.Request) {
	stores, err := handler.repository.ListStores(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stores)
}

func (handler *Handler) handleGetStore(writer http.ResponseWriter, request *http.Request) {
	code := requestutil.Param(request, "code")

	store, err := handler.repository.GetStoreByCode(request.Context(), code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, store)
}
