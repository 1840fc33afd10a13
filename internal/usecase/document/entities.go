package document

import domain "pension-ledger/internal/domain/document"

type Submission struct {
	Type       domain.Type
	ContentRef string
}

type Decision struct {
	Type    domain.Type
	Approve bool
	Reason  string
}
