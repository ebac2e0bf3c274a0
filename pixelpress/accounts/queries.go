package accounts

const (
	queryFindByID = `
		SELECT id, email, full_name, credits, is_admin, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	queryList = `
		SELECT id, email, full_name, credits, is_admin, created_at, updated_at
		FROM profiles
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	queryCount = `
		SELECT COUNT(*) FROM profiles
	`

	// never lets an adjustment push the balance below zero
	queryAdjustCredits = `
		UPDATE profiles
		SET credits = credits + $2, updated_at = NOW()
		WHERE id = $1 AND credits + $2 >= 0
		RETURNING credits
	`

	queryExists = `
		SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1)
	`

	queryInsertTransaction = `
		INSERT INTO credit_transactions (user_id, amount, category, reason, balance_after)
		VALUES ($1, $2, $3, $4, $5)
	`

	queryListTransactions = `
		SELECT id, amount, category, reason, balance_after, created_at
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
)
