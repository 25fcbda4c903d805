package kvrepo

import (
	"context"
	"sort"

	"pet-clinic-scheduling/internal/ports/kv"
)

type IssueKind string

const (
	// IssueDangling: el índice tiene un id sin registro (o de otro owner).
	IssueDangling IssueKind = "dangling"
	// IssueMissing: el registro existe pero no figura en el índice de su owner.
	IssueMissing IssueKind = "missing"
	// IssueOrphaned: registro clínico de una mascota que ya no existe.
	IssueOrphaned IssueKind = "orphaned"
)

type Issue struct {
	Kind  IssueKind `json:"kind"`
	Index string    `json:"index"`
	ID    string    `json:"id"`
}

type AuditReport struct {
	Indexes int     `json:"indexes"`
	Records int     `json:"records"`
	Issues  []Issue `json:"issues"`
}

func (r AuditReport) OK() bool {
	return len(r.Issues) == 0
}

// Audit compara cada familia de índices con los registros que dicen indexar.
// Es de solo lectura y no es un snapshot: con escrituras concurrentes puede
// reportar falsos positivos transitorios.
func Audit(ctx context.Context, store kv.Store) (AuditReport, error) {
	report := AuditReport{Issues: []Issue{}}

	petRecs, err := scanAll[petRecord](ctx, store, prefixPet)
	if err != nil {
		return AuditReport{}, err
	}
	apptRecs, err := scanAll[appointmentRecord](ctx, store, prefixAppointment)
	if err != nil {
		return AuditReport{}, err
	}
	healthRecs, err := scanAll[healthRecord](ctx, store, prefixHealth)
	if err != nil {
		return AuditReport{}, err
	}
	report.Records = len(petRecs) + len(apptRecs) + len(healthRecs)

	livePets := make(map[string]struct{}, len(petRecs))
	petsByOwner := map[string][]string{}
	for _, p := range petRecs {
		livePets[p.ID] = struct{}{}
		petsByOwner[p.OwnerID] = append(petsByOwner[p.OwnerID], p.ID)
	}
	apptsByUser := map[string][]string{}
	for _, a := range apptRecs {
		apptsByUser[a.UserID] = append(apptsByUser[a.UserID], a.ID)
	}
	healthByPet := map[string][]string{}
	for _, h := range healthRecs {
		healthByPet[h.PetID] = append(healthByPet[h.PetID], h.ID)
		if _, ok := livePets[h.PetID]; !ok {
			report.Issues = append(report.Issues, Issue{Kind: IssueOrphaned, Index: petHealthKey(h.PetID), ID: h.ID})
		}
	}

	families := []struct {
		prefix   string
		expected map[string][]string
	}{
		{prefixOwnerPets, petsByOwner},
		{prefixUserAppointments, apptsByUser},
		{prefixPetHealth, healthByPet},
	}
	for _, f := range families {
		n, issues, err := auditFamily(ctx, store, f.prefix, f.expected)
		if err != nil {
			return AuditReport{}, err
		}
		report.Indexes += n
		report.Issues = append(report.Issues, issues...)
	}

	sort.SliceStable(report.Issues, func(i, j int) bool {
		if report.Issues[i].Index != report.Issues[j].Index {
			return report.Issues[i].Index < report.Issues[j].Index
		}
		return report.Issues[i].ID < report.Issues[j].ID
	})
	return report, nil
}

func auditFamily(ctx context.Context, store kv.Store, prefix string, expected map[string][]string) (int, []Issue, error) {
	values, err := store.ScanPrefix(ctx, prefix)
	if err != nil {
		return 0, nil, err
	}

	actual := make(map[string]map[string]struct{}, len(values))
	for _, b := range values {
		l, err := decodeIndex(b)
		if err != nil {
			return 0, nil, err
		}
		set := actual[l.Owner]
		if set == nil {
			set = make(map[string]struct{}, len(l.IDs))
			actual[l.Owner] = set
		}
		for _, id := range l.IDs {
			set[id] = struct{}{}
		}
	}

	var issues []Issue
	for owner, ids := range actual {
		want := toSet(expected[owner])
		for id := range ids {
			if _, ok := want[id]; !ok {
				issues = append(issues, Issue{Kind: IssueDangling, Index: prefix + owner, ID: id})
			}
		}
	}
	for owner, ids := range expected {
		have := actual[owner]
		for _, id := range ids {
			if _, ok := have[id]; !ok {
				issues = append(issues, Issue{Kind: IssueMissing, Index: prefix + owner, ID: id})
			}
		}
	}
	return len(values), issues, nil
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
