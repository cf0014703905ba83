package policy

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"insurance-portal/internal/adapter/gateway"
	"insurance-portal/internal/domain/policy"
	"insurance-portal/internal/testutil/stubapi"
	"insurance-portal/internal/testutil/viewsmock"
	"insurance-portal/internal/usecase/board"
	"insurance-portal/internal/usecase/form"
)

func newUsecase(t *testing.T) (*Usecase, *stubapi.Server, *viewsmock.Memory) {
	t.Helper()
	api := stubapi.New(t)
	views := viewsmock.NewMemory()
	return NewUsecase(gateway.New(gateway.Config{BaseURL: api.URL}), views), api, views
}

func validInput() policy.Input {
	return policy.Input{
		PolicyNumber: "POL-CAR-1", VehicleType: "Car", CoverageType: "Comprehensive",
		CoverageAmount: 500000, PremiumAmount: 12000, StartDate: "2025-01-01", EndDate: "2025-12-31",
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(in *policy.Input)
		want   []string
	}{
		{"ok", func(in *policy.Input) {}, nil},
		{"missing identity", func(in *policy.Input) { in.PolicyNumber, in.VehicleType, in.CoverageType = "", "", "" },
			[]string{"Policy number is required", "Vehicle type is required", "Coverage type is required"}},
		{"amounts", func(in *policy.Input) { in.CoverageAmount, in.PremiumAmount = 0, -1 },
			[]string{"Coverage amount must be greater than 0", "Premium amount must be greater than 0"}},
		{"end before start", func(in *policy.Input) { in.EndDate = "2024-12-31" },
			[]string{"End date must be after start date"}},
		{"same day", func(in *policy.Input) { in.EndDate = in.StartDate },
			[]string{"End date must be after start date"}},
		{"bad date", func(in *policy.Input) { in.StartDate = "01/01/2025" },
			[]string{"Start date must be a valid date (YYYY-MM-DD)"}},
		{"bad status", func(in *policy.Input) { in.PolicyStatus = "ARCHIVED" },
			[]string{"Policy status must be ACTIVE or INACTIVE"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			got := form.Problems(Validate(normalize(in)))
			if len(got) != len(tc.want) {
				t.Fatalf("problems = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("problems[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestBrowse_HidesInactive(t *testing.T) {
	uc, api, _ := newUsecase(t)
	api.AddPolicy(policy.Template{PolicyNumber: "A", CoverageType: "Third Party", PremiumAmount: 2500})
	api.AddPolicy(policy.Template{PolicyNumber: "B", CoverageType: "Comprehensive", PolicyStatus: "INACTIVE"})

	cards, err := uc.Browse(context.Background())
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if len(cards) != 1 || cards[0].Name != "Third Party Template" || cards[0].BasePrice != "₹2,500" {
		t.Fatalf("cards = %+v", cards)
	}

	card, err := uc.TemplateByNumber(context.Background(), " A ")
	if err != nil || card.PolicyNumber != "A" {
		t.Fatalf("TemplateByNumber: %+v %v", card, err)
	}
	if _, err := uc.TemplateByNumber(context.Background(), ""); form.Problems(err) == nil {
		t.Fatalf("empty number should be a form error, got %v", err)
	}
}

func TestCreateUpdateDelete_PatchBoard(t *testing.T) {
	uc, api, views := newUsecase(t)
	sess := api.Session("admin")
	ctx := context.Background()
	api.AddPolicy(policy.Template{PolicyNumber: "SEED", CoverageType: "Own Damage"})

	list, err := uc.List(ctx, sess, false)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: %v %v", list, err)
	}

	created, err := uc.Create(ctx, sess, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created.Active || created.CoverageLabel != "₹5,00,000" {
		t.Fatalf("created = %+v", created)
	}

	in := validInput()
	in.PolicyStatus = "inactive"
	updated, err := uc.Update(ctx, sess, created.PolicyID, in)
	if err != nil || updated.Active {
		t.Fatalf("Update: %+v %v", updated, err)
	}

	calls := api.Calls(http.MethodGet, "/api/policies")
	list, _ = uc.List(ctx, sess, false)
	if api.Calls(http.MethodGet, "/api/policies") != calls {
		t.Fatalf("cached board should not re-fetch")
	}
	if len(list) != 2 || list[0].PolicyID != created.PolicyID || list[0].Active {
		t.Fatalf("board not patched: %+v", list)
	}

	msg, err := uc.Delete(ctx, sess, created.PolicyID)
	if err != nil || msg != "Policy deleted successfully" {
		t.Fatalf("Delete: %q %v", msg, err)
	}
	list, _ = uc.List(ctx, sess, false)
	if len(list) != 1 || list[0].PolicyNumber != "SEED" {
		t.Fatalf("board after delete: %+v", list)
	}
	if !views.Has(board.Key("policies", sess.Key)) {
		t.Fatalf("board not cached")
	}
}

func TestCreate_InvalidSkipsNetwork(t *testing.T) {
	uc, api, _ := newUsecase(t)
	in := validInput()
	in.CoverageAmount = 0
	if _, err := uc.Create(context.Background(), api.Session("admin"), in); form.Problems(err) == nil {
		t.Fatalf("expected form error, got %v", err)
	}
	if api.TotalCalls() != 0 {
		t.Fatalf("invalid form reached the API")
	}
}

func TestCreate_ServerError(t *testing.T) {
	uc, api, _ := newUsecase(t)
	api.AddPolicy(policy.Template{PolicyNumber: "POL-CAR-1", CoverageType: "Comprehensive"})
	_, err := uc.Create(context.Background(), api.Session("admin"), validInput())
	var ae *gateway.APIError
	if !errors.As(err, &ae) || ae.Message != "Policy number already exists" {
		t.Fatalf("err = %v", err)
	}
}

func TestCustomerCannotCreate(t *testing.T) {
	uc, api, _ := newUsecase(t)
	_, err := uc.Create(context.Background(), api.Session("customer"), validInput())
	if gateway.StatusOf(err) != http.StatusForbidden {
		t.Fatalf("status = %d (%v)", gateway.StatusOf(err), err)
	}
}
