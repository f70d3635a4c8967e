package extract

import "TalentRadar/internal/domain"

// Dedupe drops nameless candidates and candidates whose normalized name is
// already in existingNames or earlier in the same batch.
func Dedupe(candidates []domain.ProspectCandidate, existingNames []string) []domain.ProspectCandidate {
	seen := make(map[string]struct{}, len(existingNames)+len(candidates))
	for _, name := range existingNames {
		if key := domain.NormalizeName(name); key != "" {
			seen[key] = struct{}{}
		}
	}

	out := make([]domain.ProspectCandidate, 0, len(candidates))
	for _, c := range candidates {
		key := domain.NormalizeName(c.Name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Names lists the names held by a registry snapshot.
func Names(records []domain.ProspectRecord) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names
}
