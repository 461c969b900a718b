package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/core/port"
)

var testClock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testClock }

func newParcelFixture(t *testing.T, parcels *stubParcelRepo, addresses *stubAddressRepo, users *stubUserRepo, publisher *stubPublisher) *ParcelService {
	t.Helper()
	return NewParcelService(parcels, addresses, users, publisher, nil, zap.NewNop()).WithClock(fixedClock)
}

func validCreateInput() CreateParcelInput {
	return CreateParcelInput{
		Name:         "Mechanical keyboard",
		Description:  "75% layout",
		Quantity:     1,
		Price:        120.0,
		Weight:       1.2,
		ToAddressID:  "addr-1",
		PurchaseDate: testClock.Add(-24 * time.Hour),
	}
}

func ownerAddress() domain.Address {
	return domain.Address{ID: "addr-1", UserID: "owner-1", Line1: "1 Main St", City: "Casablanca", Country: "MA"}
}

func TestCreateParcelValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateParcelInput)
		message string
	}{
		{
			name:    "short name",
			mutate:  func(in *CreateParcelInput) { in.Name = "ab" },
			message: "name must be between 3 and 50 characters",
		},
		{
			name:    "zero quantity",
			mutate:  func(in *CreateParcelInput) { in.Quantity = 0 },
			message: "quantity must be at least 1",
		},
		{
			name:    "negative price",
			mutate:  func(in *CreateParcelInput) { in.Price = -5 },
			message: "price must be a positive number",
		},
		{
			name:    "negative weight",
			mutate:  func(in *CreateParcelInput) { in.Weight = -1 },
			message: "weight cannot be negative",
		},
		{
			name:    "future purchase date",
			mutate:  func(in *CreateParcelInput) { in.PurchaseDate = testClock.Add(48 * time.Hour) },
			message: "purchase date cannot be in the future",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newParcelFixture(t, newStubParcelRepo(), newStubAddressRepo(ownerAddress()), newStubUserRepo(), &stubPublisher{})

			in := validCreateInput()
			tc.mutate(&in)

			_, err := svc.CreateParcel(context.Background(), "owner-1", in)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !IsValidationError(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if err.Error() != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, err.Error())
			}
		})
	}
}

func TestCreateParcelSuccess(t *testing.T) {
	parcels := newStubParcelRepo()
	publisher := &stubPublisher{}
	svc := newParcelFixture(t, parcels, newStubAddressRepo(ownerAddress()), newStubUserRepo(), publisher)

	parcel, err := svc.CreateParcel(context.Background(), "owner-1", validCreateInput())
	if err != nil {
		t.Fatalf("CreateParcel failed: %v", err)
	}

	if parcel.Status != domain.ParcelStatusPending {
		t.Errorf("expected pending status, got %q", parcel.Status)
	}
	if parcel.Currency != "USD" {
		t.Errorf("expected USD default currency, got %q", parcel.Currency)
	}
	if !strings.HasPrefix(parcel.ReferenceID, "#") || len(parcel.ReferenceID) != 6 {
		t.Errorf("unexpected reference id %q", parcel.ReferenceID)
	}
	for _, c := range parcel.ReferenceID[1:] {
		if !strings.ContainsRune(referenceIDCharset, c) {
			t.Errorf("reference id %q contains %q outside the charset", parcel.ReferenceID, c)
		}
	}
	if _, ok := parcels.parcels[parcel.ID]; !ok {
		t.Error("parcel was not persisted")
	}
	if !publisher.has("parcel.created") {
		t.Error("expected parcel.created event")
	}
}

func TestCreateParcelUnknownAddress(t *testing.T) {
	svc := newParcelFixture(t, newStubParcelRepo(), newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

	_, err := svc.CreateParcel(context.Background(), "owner-1", validCreateInput())
	if !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("expected ErrAddressNotFound, got %v", err)
	}
}

func TestCreateParcelForeignAddress(t *testing.T) {
	address := ownerAddress()
	address.UserID = "someone-else"
	svc := newParcelFixture(t, newStubParcelRepo(), newStubAddressRepo(address), newStubUserRepo(), &stubPublisher{})

	_, err := svc.CreateParcel(context.Background(), "owner-1", validCreateInput())
	if !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("expected ErrAddressNotFound, got %v", err)
	}
}

func TestCreateParcelDuplicate(t *testing.T) {
	parcels := newStubParcelRepo()
	parcels.duplicate = true
	svc := newParcelFixture(t, parcels, newStubAddressRepo(ownerAddress()), newStubUserRepo(), &stubPublisher{})

	_, err := svc.CreateParcel(context.Background(), "owner-1", validCreateInput())
	if !errors.Is(err, ErrParcelExists) {
		t.Fatalf("expected ErrParcelExists, got %v", err)
	}
}

func baseParcel(status domain.ParcelStatus) domain.Parcel {
	return domain.Parcel{
		ID:          "parcel-1",
		UserID:      "owner-1",
		Name:        "Mechanical keyboard",
		Quantity:    1,
		Price:       120,
		Currency:    "USD",
		ToAddressID: "addr-1",
		Status:      status,
		ReferenceID: "#AB2C3",
		IsActive:    true,
		CreatedAt:   testClock.Add(-72 * time.Hour),
	}
}

func assignedParcel(status domain.ParcelStatus) domain.Parcel {
	parcel := baseParcel(status)
	reshipper := "reshipper-1"
	parcel.ReshipperID = &reshipper
	return parcel
}

func strptr(s string) *string   { return &s }
func intptr(i int) *int         { return &i }
func f64ptr(f float64) *float64 { return &f }

func TestAssignParcel(t *testing.T) {
	reshipper := domain.User{ID: "reshipper-1", Role: domain.RoleReshipper, IsActivated: true}
	plainUser := domain.User{ID: "user-2", Role: domain.RoleUser, IsActivated: true}

	t.Run("success resets status and publishes", func(t *testing.T) {
		parcels := newStubParcelRepo(baseParcel(domain.ParcelStatusProcessing))
		publisher := &stubPublisher{}
		svc := newParcelFixture(t, parcels, newStubAddressRepo(), newStubUserRepo(reshipper), publisher)

		parcel, err := svc.AssignParcel(context.Background(), "admin-1", "parcel-1", "reshipper-1")
		if err != nil {
			t.Fatalf("AssignParcel failed: %v", err)
		}
		if parcel.ReshipperID == nil || *parcel.ReshipperID != "reshipper-1" {
			t.Error("reshipper was not attached")
		}
		if parcel.Status != domain.ParcelStatusPending {
			t.Errorf("expected status reset to pending, got %q", parcel.Status)
		}
		if !publisher.has("parcel.assigned") {
			t.Error("expected parcel.assigned event")
		}
	})

	t.Run("rejects non-reshipper target", func(t *testing.T) {
		parcels := newStubParcelRepo(baseParcel(domain.ParcelStatusPending))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(), newStubUserRepo(plainUser), &stubPublisher{})

		_, err := svc.AssignParcel(context.Background(), "admin-1", "parcel-1", "user-2")
		if !errors.Is(err, ErrInvalidReshipper) {
			t.Fatalf("expected ErrInvalidReshipper, got %v", err)
		}
	})

	t.Run("rejects unknown target", func(t *testing.T) {
		parcels := newStubParcelRepo(baseParcel(domain.ParcelStatusPending))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		_, err := svc.AssignParcel(context.Background(), "admin-1", "parcel-1", "ghost")
		if !errors.Is(err, ErrInvalidReshipper) {
			t.Fatalf("expected ErrInvalidReshipper, got %v", err)
		}
	})

	t.Run("rejects double assignment", func(t *testing.T) {
		parcels := newStubParcelRepo(assignedParcel(domain.ParcelStatusProcessing))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(), newStubUserRepo(reshipper), &stubPublisher{})

		_, err := svc.AssignParcel(context.Background(), "admin-1", "parcel-1", "reshipper-1")
		if !errors.Is(err, ErrParcelAlreadyAssigned) {
			t.Fatalf("expected ErrParcelAlreadyAssigned, got %v", err)
		}
	})

	t.Run("soft-deleted parcel is invisible", func(t *testing.T) {
		deleted := baseParcel(domain.ParcelStatusPending)
		deleted.IsDeleted = true
		parcels := newStubParcelRepo(deleted)
		svc := newParcelFixture(t, parcels, newStubAddressRepo(), newStubUserRepo(reshipper), &stubPublisher{})

		_, err := svc.AssignParcel(context.Background(), "admin-1", "parcel-1", "reshipper-1")
		if !errors.Is(err, ErrParcelNotFound) {
			t.Fatalf("expected ErrParcelNotFound, got %v", err)
		}
	})
}

func TestUpdateParcelOwner(t *testing.T) {
	t.Run("content edit while pending succeeds", func(t *testing.T) {
		parcels := newStubParcelRepo(baseParcel(domain.ParcelStatusPending))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(ownerAddress()), newStubUserRepo(), &stubPublisher{})

		parcel, err := svc.UpdateParcel(context.Background(), "owner-1", domain.RoleUser, "parcel-1", UpdateParcelInput{
			Owner: &OwnerPatch{Name: strptr("Split keyboard"), Price: f64ptr(150)},
		})
		if err != nil {
			t.Fatalf("UpdateParcel failed: %v", err)
		}
		if parcel.Name != "Split keyboard" || parcel.Price != 150 {
			t.Errorf("patch not applied: %+v", parcel)
		}
	})

	t.Run("content edit outside pending is rejected", func(t *testing.T) {
		for _, status := range []domain.ParcelStatus{
			domain.ParcelStatusProcessing,
			domain.ParcelStatusSent,
			domain.ParcelStatusReceived,
		} {
			parcels := newStubParcelRepo(baseParcel(status))
			svc := newParcelFixture(t, parcels, newStubAddressRepo(ownerAddress()), newStubUserRepo(), &stubPublisher{})

			_, err := svc.UpdateParcel(context.Background(), "owner-1", domain.RoleUser, "parcel-1", UpdateParcelInput{
				Owner: &OwnerPatch{Name: strptr("Renamed")},
			})
			if !errors.Is(err, ErrUpdateNotAllowed) {
				t.Errorf("status %q: expected ErrUpdateNotAllowed, got %v", status, err)
			}
		}
	})

	t.Run("owner confirms receipt from any status", func(t *testing.T) {
		publisher := &stubPublisher{}
		parcels := newStubParcelRepo(assignedParcel(domain.ParcelStatusSent))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(ownerAddress()), newStubUserRepo(), publisher)

		parcel, err := svc.UpdateParcel(context.Background(), "owner-1", domain.RoleUser, "parcel-1", UpdateParcelInput{
			Status: &StatusPatch{Value: domain.ParcelStatusReceived},
		})
		if err != nil {
			t.Fatalf("UpdateParcel failed: %v", err)
		}
		if parcel.Status != domain.ParcelStatusReceived {
			t.Errorf("expected received, got %q", parcel.Status)
		}
		if !publisher.has("parcel.status.changed") {
			t.Error("expected parcel.status.changed event")
		}
	})

	t.Run("owner cannot request other transitions", func(t *testing.T) {
		parcels := newStubParcelRepo(baseParcel(domain.ParcelStatusPending))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(ownerAddress()), newStubUserRepo(), &stubPublisher{})

		_, err := svc.UpdateParcel(context.Background(), "owner-1", domain.RoleUser, "parcel-1", UpdateParcelInput{
			Status: &StatusPatch{Value: domain.ParcelStatusSent},
		})
		if !errors.Is(err, ErrUpdateNotAllowed) {
			t.Fatalf("expected ErrUpdateNotAllowed, got %v", err)
		}
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		parcels := newStubParcelRepo(baseParcel(domain.ParcelStatusPending))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(ownerAddress()), newStubUserRepo(), &stubPublisher{})

		_, err := svc.UpdateParcel(context.Background(), "intruder", domain.RoleUser, "parcel-1", UpdateParcelInput{
			Owner: &OwnerPatch{Name: strptr("Mine now")},
		})
		if !errors.Is(err, ErrUnauthorizedUpdate) {
			t.Fatalf("expected ErrUnauthorizedUpdate, got %v", err)
		}
	})

	t.Run("unknown status value is rejected", func(t *testing.T) {
		parcels := newStubParcelRepo(baseParcel(domain.ParcelStatusPending))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(ownerAddress()), newStubUserRepo(), &stubPublisher{})

		_, err := svc.UpdateParcel(context.Background(), "owner-1", domain.RoleUser, "parcel-1", UpdateParcelInput{
			Status: &StatusPatch{Value: "teleported"},
		})
		if !IsValidationError(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestUpdateParcelReshipper(t *testing.T) {
	t.Run("handling fields inside the window", func(t *testing.T) {
		parcels := newStubParcelRepo(assignedParcel(domain.ParcelStatusProcessing))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		parcel, err := svc.UpdateParcel(context.Background(), "reshipper-1", domain.RoleReshipper, "parcel-1", UpdateParcelInput{
			Reshipper: &ReshipperPatch{Note: strptr("box dented"), ReceivedQuantity: intptr(1)},
		})
		if err != nil {
			t.Fatalf("UpdateParcel failed: %v", err)
		}
		if parcel.ReshipperNote == nil || *parcel.ReshipperNote != "box dented" {
			t.Error("note not applied")
		}
	})

	t.Run("handling fields outside the window are rejected", func(t *testing.T) {
		for _, status := range []domain.ParcelStatus{
			domain.ParcelStatusPending,
			domain.ParcelStatusReceived,
			domain.ParcelStatusSent,
		} {
			parcels := newStubParcelRepo(assignedParcel(status))
			svc := newParcelFixture(t, parcels, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

			_, err := svc.UpdateParcel(context.Background(), "reshipper-1", domain.RoleReshipper, "parcel-1", UpdateParcelInput{
				Reshipper: &ReshipperPatch{Note: strptr("note")},
			})
			if !errors.Is(err, ErrUpdateNotAllowed) {
				t.Errorf("status %q: expected ErrUpdateNotAllowed, got %v", status, err)
			}
		}
	})

	t.Run("sent stamps the sent date and accepts tracking", func(t *testing.T) {
		parcels := newStubParcelRepo(assignedParcel(domain.ParcelStatusProcessing))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		parcel, err := svc.UpdateParcel(context.Background(), "reshipper-1", domain.RoleReshipper, "parcel-1", UpdateParcelInput{
			Status: &StatusPatch{Value: domain.ParcelStatusSent, TrackingNumber: strptr("TRACK-99")},
		})
		if err != nil {
			t.Fatalf("UpdateParcel failed: %v", err)
		}
		if parcel.ReshipperSentDate == nil || !parcel.ReshipperSentDate.Equal(testClock) {
			t.Error("sent date was not stamped")
		}
		if parcel.TrackingNumber != "TRACK-99" {
			t.Errorf("tracking number not applied, got %q", parcel.TrackingNumber)
		}
	})

	t.Run("leaving pending stamps the received date", func(t *testing.T) {
		parcels := newStubParcelRepo(assignedParcel(domain.ParcelStatusPending))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		parcel, err := svc.UpdateParcel(context.Background(), "reshipper-1", domain.RoleReshipper, "parcel-1", UpdateParcelInput{
			Status: &StatusPatch{Value: domain.ParcelStatusProcessing},
		})
		if err != nil {
			t.Fatalf("UpdateParcel failed: %v", err)
		}
		if parcel.ReshipperReceivedDate == nil || !parcel.ReshipperReceivedDate.Equal(testClock) {
			t.Error("received date was not stamped")
		}
	})

	t.Run("reshipper cannot set received", func(t *testing.T) {
		parcels := newStubParcelRepo(assignedParcel(domain.ParcelStatusSent))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		_, err := svc.UpdateParcel(context.Background(), "reshipper-1", domain.RoleReshipper, "parcel-1", UpdateParcelInput{
			Status: &StatusPatch{Value: domain.ParcelStatusReceived},
		})
		if !errors.Is(err, ErrInvalidStatusUpdate) {
			t.Fatalf("expected ErrInvalidStatusUpdate, got %v", err)
		}
	})

	t.Run("reshipper cannot touch owner fields", func(t *testing.T) {
		parcels := newStubParcelRepo(assignedParcel(domain.ParcelStatusProcessing))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		_, err := svc.UpdateParcel(context.Background(), "reshipper-1", domain.RoleReshipper, "parcel-1", UpdateParcelInput{
			Owner: &OwnerPatch{Price: f64ptr(1)},
		})
		if !errors.Is(err, ErrUnauthorizedUpdate) {
			t.Fatalf("expected ErrUnauthorizedUpdate, got %v", err)
		}
	})
}

func TestUpdateParcelAdmin(t *testing.T) {
	t.Run("admin may confirm receipt", func(t *testing.T) {
		parcels := newStubParcelRepo(assignedParcel(domain.ParcelStatusSent))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		parcel, err := svc.UpdateParcel(context.Background(), "admin-1", domain.RoleAdmin, "parcel-1", UpdateParcelInput{
			Status: &StatusPatch{Value: domain.ParcelStatusReceived},
		})
		if err != nil {
			t.Fatalf("UpdateParcel failed: %v", err)
		}
		if parcel.Status != domain.ParcelStatusReceived {
			t.Errorf("expected received, got %q", parcel.Status)
		}
	})

	t.Run("admin follows the same pending gate for content", func(t *testing.T) {
		parcels := newStubParcelRepo(baseParcel(domain.ParcelStatusProcessing))
		svc := newParcelFixture(t, parcels, newStubAddressRepo(ownerAddress()), newStubUserRepo(), &stubPublisher{})

		_, err := svc.UpdateParcel(context.Background(), "admin-1", domain.RoleAdmin, "parcel-1", UpdateParcelInput{
			Owner: &OwnerPatch{Name: strptr("Renamed")},
		})
		if !errors.Is(err, ErrUpdateNotAllowed) {
			t.Fatalf("expected ErrUpdateNotAllowed, got %v", err)
		}
	})
}

func TestDeleteParcel(t *testing.T) {
	t.Run("bad reference format", func(t *testing.T) {
		svc := newParcelFixture(t, newStubParcelRepo(baseParcel(domain.ParcelStatusPending)), newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		err := svc.DeleteParcel(context.Background(), "owner-1", "parcel-1", "nope")
		if !IsValidationError(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("reference mismatch hides the parcel", func(t *testing.T) {
		svc := newParcelFixture(t, newStubParcelRepo(baseParcel(domain.ParcelStatusPending)), newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		err := svc.DeleteParcel(context.Background(), "owner-1", "parcel-1", "#ZZZZZ")
		if !errors.Is(err, ErrParcelNotFound) {
			t.Fatalf("expected ErrParcelNotFound, got %v", err)
		}
	})

	t.Run("foreign owner hides the parcel", func(t *testing.T) {
		svc := newParcelFixture(t, newStubParcelRepo(baseParcel(domain.ParcelStatusPending)), newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		err := svc.DeleteParcel(context.Background(), "intruder", "parcel-1", "#AB2C3")
		if !errors.Is(err, ErrParcelNotFound) {
			t.Fatalf("expected ErrParcelNotFound, got %v", err)
		}
	})

	t.Run("already deleted", func(t *testing.T) {
		deleted := baseParcel(domain.ParcelStatusPending)
		deleted.IsDeleted = true
		earlier := testClock.Add(-time.Hour)
		deleted.DeletedAt = &earlier
		repo := newStubParcelRepo(deleted)
		svc := newParcelFixture(t, repo, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		err := svc.DeleteParcel(context.Background(), "owner-1", "parcel-1", "#AB2C3")
		if !errors.Is(err, ErrParcelAlreadyDeleted) {
			t.Fatalf("expected ErrParcelAlreadyDeleted, got %v", err)
		}
		if got := repo.parcels["parcel-1"].DeletedAt; !got.Equal(earlier) {
			t.Error("deletion timestamp was re-stamped")
		}
	})

	t.Run("assigned and not yet received", func(t *testing.T) {
		svc := newParcelFixture(t, newStubParcelRepo(assignedParcel(domain.ParcelStatusProcessing)), newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		err := svc.DeleteParcel(context.Background(), "owner-1", "parcel-1", "#AB2C3")
		if !errors.Is(err, ErrParcelReshipping) {
			t.Fatalf("expected ErrParcelReshipping, got %v", err)
		}
	})

	t.Run("assigned but received deletes fine", func(t *testing.T) {
		publisher := &stubPublisher{}
		repo := newStubParcelRepo(assignedParcel(domain.ParcelStatusReceived))
		svc := newParcelFixture(t, repo, newStubAddressRepo(), newStubUserRepo(), publisher)

		if err := svc.DeleteParcel(context.Background(), "owner-1", "parcel-1", "#AB2C3"); err != nil {
			t.Fatalf("DeleteParcel failed: %v", err)
		}
		if !repo.parcels["parcel-1"].IsDeleted {
			t.Error("parcel was not soft-deleted")
		}
		if !publisher.has("parcel.deleted") {
			t.Error("expected parcel.deleted event")
		}
	})

	t.Run("bare reference without marker is accepted", func(t *testing.T) {
		repo := newStubParcelRepo(baseParcel(domain.ParcelStatusPending))
		parcel := repo.parcels["parcel-1"]
		parcel.ReferenceID = "AB2C3X"
		repo.parcels["parcel-1"] = parcel
		svc := newParcelFixture(t, repo, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		if err := svc.DeleteParcel(context.Background(), "owner-1", "parcel-1", "AB2C3X"); err != nil {
			t.Fatalf("DeleteParcel failed: %v", err)
		}
	})
}

func TestGetParcelVisibility(t *testing.T) {
	parcels := newStubParcelRepo(assignedParcel(domain.ParcelStatusProcessing))
	svc := newParcelFixture(t, parcels, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

	tests := []struct {
		name    string
		actorID string
		role    domain.Role
		wantErr error
	}{
		{"owner sees it", "owner-1", domain.RoleUser, nil},
		{"reshipper sees it", "reshipper-1", domain.RoleReshipper, nil},
		{"admin sees it", "someone", domain.RoleAdmin, nil},
		{"stranger gets not found", "intruder", domain.RoleUser, ErrParcelNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GetParcel(context.Background(), tc.actorID, tc.role, "parcel-1")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestListParcels(t *testing.T) {
	t.Run("defaults and owner scope", func(t *testing.T) {
		repo := newStubParcelRepo()
		repo.listPage = &port.ParcelPage{Items: []domain.Parcel{baseParcel(domain.ParcelStatusPending)}, TotalItems: 45}
		svc := newParcelFixture(t, repo, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		list, err := svc.ListParcels(context.Background(), "owner-1", ParcelListOptions{})
		if err != nil {
			t.Fatalf("ListParcels failed: %v", err)
		}
		if repo.listFilter.OwnerID != "owner-1" {
			t.Errorf("owner scope not applied, got %q", repo.listFilter.OwnerID)
		}
		if repo.listLimit != 20 || repo.listOffset != 0 {
			t.Errorf("expected limit 20 offset 0, got %d/%d", repo.listLimit, repo.listOffset)
		}
		if list.Pagination.TotalPages != 3 || !list.Pagination.HasNextPage || list.Pagination.HasPrevPage {
			t.Errorf("unexpected pagination: %+v", list.Pagination)
		}
	})

	t.Run("limit is capped", func(t *testing.T) {
		repo := newStubParcelRepo()
		svc := newParcelFixture(t, repo, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		if _, err := svc.ListParcels(context.Background(), "owner-1", ParcelListOptions{Page: 2, Limit: 500}); err != nil {
			t.Fatalf("ListParcels failed: %v", err)
		}
		if repo.listLimit != 100 || repo.listOffset != 100 {
			t.Errorf("expected limit 100 offset 100, got %d/%d", repo.listLimit, repo.listOffset)
		}
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		svc := newParcelFixture(t, newStubParcelRepo(), newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		_, err := svc.ListParcels(context.Background(), "owner-1", ParcelListOptions{Status: "limbo"})
		if !IsValidationError(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown sort falls back to created_at desc", func(t *testing.T) {
		repo := newStubParcelRepo()
		svc := newParcelFixture(t, repo, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

		if _, err := svc.ListParcels(context.Background(), "owner-1", ParcelListOptions{SortBy: "price; DROP TABLE"}); err != nil {
			t.Fatalf("ListParcels failed: %v", err)
		}
		if repo.listSort.Field != port.ParcelSortCreatedAt || !repo.listSort.Descending {
			t.Errorf("expected created_at desc fallback, got %+v", repo.listSort)
		}
	})
}

func TestNormalizeSort(t *testing.T) {
	tests := []struct {
		sortBy string
		order  string
		field  port.ParcelSortField
		desc   bool
	}{
		{"created_at", "asc", port.ParcelSortCreatedAt, false},
		{"status", "desc", port.ParcelSortStatus, true},
		{"weight", "", port.ParcelSortWeight, true},
		{"tracking_number", "ASC", port.ParcelSortTrackingNumber, false},
		{"price", "asc", port.ParcelSortCreatedAt, true},
		{"", "", port.ParcelSortCreatedAt, true},
	}

	for _, tc := range tests {
		got := normalizeSort(tc.sortBy, tc.order)
		if got.Field != tc.field || got.Descending != tc.desc {
			t.Errorf("normalizeSort(%q, %q) = %+v, want %s desc=%v", tc.sortBy, tc.order, got, tc.field, tc.desc)
		}
	}
}

func TestUpdateParcelEmptyPatchSkipsWrite(t *testing.T) {
	parcels := newStubParcelRepo(baseParcel(domain.ParcelStatusPending))
	svc := newParcelFixture(t, parcels, newStubAddressRepo(), newStubUserRepo(), &stubPublisher{})

	parcel, err := svc.UpdateParcel(context.Background(), "owner-1", domain.RoleUser, "parcel-1", UpdateParcelInput{})
	if err != nil {
		t.Fatalf("UpdateParcel failed: %v", err)
	}
	if parcel.Status != domain.ParcelStatusPending {
		t.Errorf("status = %q, want pending untouched", parcel.Status)
	}
	if parcels.lastUpdate != nil {
		t.Errorf("expected no write for an empty patch, got %+v", *parcels.lastUpdate)
	}
}
