package core

// Totals is the aggregated view of transaction amounts grouped by state.
// GrandTotal is always the sum of the three buckets; states absent from the
// underlying aggregation contribute zero.
type Totals struct {
	Future      Money `json:"totalsFuture"`
	Cleared     Money `json:"totalsCleared"`
	Outstanding Money `json:"totalsOutstanding"`
	GrandTotal  Money `json:"totals"`
}

// TotalsFromStateSums builds a Totals from per-state sums, typically the
// result of a GROUP BY transaction_state query. Amounts under the undefined
// state are excluded from every bucket.
func TotalsFromStateSums(sums map[TransactionState]int64) Totals {
	t := Totals{
		Future:      Money{Cents: sums[TransactionStateFuture]},
		Cleared:     Money{Cents: sums[TransactionStateCleared]},
		Outstanding: Money{Cents: sums[TransactionStateOutstanding]},
	}
	t.GrandTotal = Money{Cents: t.Future.Cents + t.Cleared.Cents + t.Outstanding.Cents}
	return t
}

// PaymentEntryAmounts returns the double-entry amounts for a payment: the
// funding (debit) account records an outflow and the credit account records
// a balance reduction, so both entries carry the negated amount.
func PaymentEntryAmounts(amount Money) (source, destination Money) {
	return amount.Neg(), amount.Neg()
}

// TransferEntryAmounts returns the double-entry amounts for a transfer
// between debit accounts: money leaves the source and arrives at the
// destination.
func TransferEntryAmounts(amount Money) (source, destination Money) {
	return amount.Neg(), amount
}
