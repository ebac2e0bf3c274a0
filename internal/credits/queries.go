package credits

const (
	queryBalance = `
		SELECT credits FROM profiles WHERE id = $1
	`

	// conditional update keeps the debit atomic and never lets credits go negative
	queryDebit = `
		UPDATE profiles
		SET credits = credits - $2, updated_at = NOW()
		WHERE id = $1 AND credits >= $2
		RETURNING credits
	`

	queryInsertTransaction = `
		INSERT INTO credit_transactions (user_id, amount, category, reason, balance_after)
		VALUES ($1, $2, $3, $4, $5)
	`
)
