package domain

import "testing"

func TestValidParcelStatus(t *testing.T) {
	for _, status := range []ParcelStatus{
		ParcelStatusPending, ParcelStatusProcessing, ParcelStatusReceived,
		ParcelStatusApproved, ParcelStatusRejected, ParcelStatusCancelled,
		ParcelStatusSent,
	} {
		if !ValidParcelStatus(status) {
			t.Errorf("%q should be a valid status", status)
		}
	}

	for _, status := range []ParcelStatus{"", "PENDING", "delivered", "limbo"} {
		if ValidParcelStatus(status) {
			t.Errorf("%q should not be a valid status", status)
		}
	}
}

func TestInHandlingWindow(t *testing.T) {
	open := []ParcelStatus{ParcelStatusProcessing, ParcelStatusApproved, ParcelStatusRejected, ParcelStatusCancelled}
	closed := []ParcelStatus{ParcelStatusPending, ParcelStatusReceived, ParcelStatusSent}

	for _, status := range open {
		if !(Parcel{Status: status}).InHandlingWindow() {
			t.Errorf("window should be open in %q", status)
		}
	}
	for _, status := range closed {
		if (Parcel{Status: status}).InHandlingWindow() {
			t.Errorf("window should be closed in %q", status)
		}
	}
}

func TestAssigned(t *testing.T) {
	reshipper := "reshipper-1"
	empty := ""

	if (Parcel{}).Assigned() {
		t.Error("unassigned parcel reports assigned")
	}
	if (Parcel{ReshipperID: &empty}).Assigned() {
		t.Error("empty reshipper id reports assigned")
	}
	if !(Parcel{ReshipperID: &reshipper}).Assigned() {
		t.Error("assigned parcel reports unassigned")
	}
}
