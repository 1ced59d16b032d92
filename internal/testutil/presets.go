package testutil

import "github.com/zjrosen/evencheck/internal/attendance/domain"

// WithStandardTestData adds three individuals in two categories and five
// records over three days. 2024-03-03 has three records.
func (b *Builder) WithStandardTestData() *Builder {
	return b.
		WithIndividual("S1", Name("Ana"), Category("Physics"), RegisteredOn("2024-02-01")).
		WithIndividual("S2", Name("Ben"), Category("Physics"), RegisteredOn("2024-02-01")).
		WithIndividual("S3", Name("Cy"), Category("Math"), RegisteredOn("2024-02-15")).
		WithRecord("S1", "2024-03-01", At("08:55:00"), Via(domain.MethodQRCode)).
		WithRecord("S2", "2024-03-02", At("09:10:00")).
		WithRecord("S1", "2024-03-03", At("08:50:00"), Via(domain.MethodQRCode)).
		WithRecord("S2", "2024-03-03", At("09:02:00"), Via(domain.MethodBiometric)).
		WithRecord("S3", "2024-03-03", At("09:30:00"))
}

// WithUnregisteredRecords adds records for ids that are not in the registry.
func (b *Builder) WithUnregisteredRecords() *Builder {
	return b.
		WithRecord("S9", "2024-03-02", As("Ben Walk-in")).
		WithRecord("S9", "2024-03-03", As("Ben Walk-in"), Via(domain.MethodFacialRecognition))
}
