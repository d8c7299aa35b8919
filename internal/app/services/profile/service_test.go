package profile

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "github.com/lunaredge/storefront/internal/app/domain/profile"
	"github.com/lunaredge/storefront/internal/app/services/auth"
	"github.com/lunaredge/storefront/internal/app/state"
	"github.com/lunaredge/storefront/internal/app/storage/memory"
	"github.com/lunaredge/storefront/pkg/logger"
)

func quietLogger() *logger.Logger {
	log := logger.NewDefault("test")
	log.SetOutput(io.Discard)
	return log
}

func authServer(t *testing.T, success bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !success {
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": "ok",
			"user":    map[string]string{"name": "Garvesh", "email": "g@example.com"},
		})
	}))
}

func TestLoginActivatesUser(t *testing.T) {
	srv := authServer(t, true)
	defer srv.Close()

	log := quietLogger()
	st := state.New(memory.New(), log)
	svc := New(st, auth.NewClient(srv.URL, log), log)

	result := svc.Login(context.Background(), "g@example.com", "secret")
	if !result.Success {
		t.Fatalf("login failed: %#v", result)
	}

	user, ok := svc.Current()
	if !ok || user.Email != "g@example.com" || user.ID == "" {
		t.Fatalf("user not activated: %#v ok=%v", user, ok)
	}
}

func TestLoginKeepsLocalAddressBook(t *testing.T) {
	srv := authServer(t, true)
	defer srv.Close()

	log := quietLogger()
	st := state.New(memory.New(), log)
	st.SetUser(domain.User{
		Email: "g@example.com",
		Addresses: []domain.Address{
			{Type: "Home", Line1: "12 Lake Rd", City: "Pune", State: "MH", Pincode: "411001"},
		},
	})

	svc := New(st, auth.NewClient(srv.URL, log), log)
	if result := svc.Login(context.Background(), "g@example.com", "secret"); !result.Success {
		t.Fatalf("login failed: %#v", result)
	}

	user, _ := svc.Current()
	if len(user.Addresses) != 1 {
		t.Fatalf("address book dropped on login: %#v", user.Addresses)
	}
}

func TestLoginKeepsAnonymousAddressBook(t *testing.T) {
	srv := authServer(t, true)
	defer srv.Close()

	log := quietLogger()
	st := state.New(memory.New(), log)
	// Addresses added before any login live on an anonymous profile.
	st.ReplaceAddresses([]domain.Address{
		{Type: "Home", Line1: "12 Lake Rd", City: "Pune", State: "MH", Pincode: "411001"},
	})

	svc := New(st, auth.NewClient(srv.URL, log), log)
	if result := svc.Login(context.Background(), "g@example.com", "secret"); !result.Success {
		t.Fatalf("login failed: %#v", result)
	}

	user, _ := svc.Current()
	if len(user.Addresses) != 1 || user.Addresses[0].Line1 != "12 Lake Rd" {
		t.Fatalf("pre-login address book dropped: %#v", user.Addresses)
	}
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	srv := authServer(t, false)
	defer srv.Close()

	log := quietLogger()
	st := state.New(memory.New(), log)
	svc := New(st, auth.NewClient(srv.URL, log), log)

	result := svc.Login(context.Background(), "g@example.com", "wrong")
	if result.Success {
		t.Fatal("expected failure")
	}
	if _, ok := svc.Current(); ok {
		t.Fatal("no user should be active after failed login")
	}
}

func TestLogoutClearsUser(t *testing.T) {
	log := quietLogger()
	st := state.New(memory.New(), log)
	st.SetUser(domain.User{Name: "Garvesh", Email: "g@example.com"})
	svc := New(st, auth.NewClient("http://127.0.0.1:0", log), log)

	svc.Logout()
	if _, ok := svc.Current(); ok {
		t.Fatal("user should be cleared")
	}
}

func TestUpdateRequiresNameAndEmail(t *testing.T) {
	log := quietLogger()
	st := state.New(memory.New(), log)
	st.SetUser(domain.User{Name: "Garvesh", Email: "g@example.com"})
	svc := New(st, auth.NewClient("http://127.0.0.1:0", log), log)

	_, err := svc.Update("", "g@example.com", "")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields[0] != "name" {
		t.Fatalf("expected ValidationError citing name, got %v", err)
	}

	user, err := svc.Update("New Name", "new@example.com", "file:///avatar.png")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if user.Name != "New Name" || user.AvatarURI != "file:///avatar.png" {
		t.Fatalf("update not applied: %#v", user)
	}
}
