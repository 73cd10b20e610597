package patient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// ErrUnknownPatient indicates the external registry does not know the
// patient. Registry transport failures also collapse to this error: a
// patient that cannot be confirmed must not receive a wallet.
var ErrUnknownPatient = errors.New("unknown patient")

// Patient is the registry's view of a patient identity.
type Patient struct {
	ID          string
	DisplayName string
}

// Registry confirms patient identities against an external system of record.
type Registry interface {
	FindByID(ctx context.Context, patientID string) (Patient, error)
	FindByPhone(ctx context.Context, phone string) (Patient, error)
	FindByEmail(ctx context.Context, email string) (Patient, error)
}

// HTTPRegistry queries a patient registry over HTTP.
type HTTPRegistry struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRegistry constructs a registry client.
func NewHTTPRegistry(baseURL string, timeout time.Duration) *HTTPRegistry {
	return &HTTPRegistry{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type registryPatient struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

func (r *HTTPRegistry) FindByID(ctx context.Context, patientID string) (Patient, error) {
	return r.get(ctx, "/patients/"+url.PathEscape(patientID))
}

func (r *HTTPRegistry) FindByPhone(ctx context.Context, phone string) (Patient, error) {
	return r.get(ctx, "/patients?phone="+url.QueryEscape(phone))
}

func (r *HTTPRegistry) FindByEmail(ctx context.Context, email string) (Patient, error) {
	return r.get(ctx, "/patients?email="+url.QueryEscape(email))
}

func (r *HTTPRegistry) get(ctx context.Context, path string) (Patient, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return Patient{}, fmt.Errorf("%w: %v", ErrUnknownPatient, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return Patient{}, fmt.Errorf("%w: %v", ErrUnknownPatient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Patient{}, fmt.Errorf("%w: registry returned %d", ErrUnknownPatient, resp.StatusCode)
	}
	var body registryPatient
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Patient{}, fmt.Errorf("%w: %v", ErrUnknownPatient, err)
	}
	if body.ID == "" {
		return Patient{}, ErrUnknownPatient
	}
	return Patient{ID: body.ID, DisplayName: body.DisplayName}, nil
}

// MemoryRegistry is an in-memory registry for tests and dev mode.
type MemoryRegistry struct {
	mu      sync.RWMutex
	byID    map[string]Patient
	byPhone map[string]Patient
	byEmail map[string]Patient
}

// NewMemoryRegistry constructs an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		byID:    make(map[string]Patient),
		byPhone: make(map[string]Patient),
		byEmail: make(map[string]Patient),
	}
}

// Add registers a patient under the given contact points. Empty contact
// points are skipped.
func (r *MemoryRegistry) Add(p Patient, phone, email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = p
	if phone != "" {
		r.byPhone[phone] = p
	}
	if email != "" {
		r.byEmail[email] = p
	}
}

func (r *MemoryRegistry) FindByID(_ context.Context, patientID string) (Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.byID[patientID]; ok {
		return p, nil
	}
	return Patient{}, ErrUnknownPatient
}

func (r *MemoryRegistry) FindByPhone(_ context.Context, phone string) (Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.byPhone[phone]; ok {
		return p, nil
	}
	return Patient{}, ErrUnknownPatient
}

func (r *MemoryRegistry) FindByEmail(_ context.Context, email string) (Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.byEmail[email]; ok {
		return p, nil
	}
	return Patient{}, ErrUnknownPatient
}
