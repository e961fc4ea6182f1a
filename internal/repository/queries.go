package repository

func findUserQuery(identifier string) (string, []any) {
	// User names and emails are unique, so at most two rows match.
	return `SELECT id, user_name, real_name, email FROM users
WHERE user_name = $1 OR email = $1
ORDER BY id
LIMIT 2`, []any{identifier}
}

func listPreferencesQuery(userID int64) (string, []any) {
	return `SELECT key, value FROM user_preferences WHERE user_id = $1`, []any{userID}
}

func updateUserQuery(u *User) (string, []any) {
	return `UPDATE users SET user_name = $1, real_name = $2, email = $3, updated_at = NOW() WHERE id = $4`,
		[]any{u.userName, u.realName, u.email, u.ID}
}

func setPreferenceQuery(userID int64, key, value string) (string, []any) {
	return `INSERT INTO user_preferences (user_id, key, value) VALUES ($1, $2, $3)
ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value`, []any{userID, key, value}
}

func addAuthLogQuery(entry AuthLogEntry) (string, []any) {
	return `INSERT INTO auth_log (user_name, provider_name, message, remote_addr) VALUES ($1, $2, $3, $4)`,
		[]any{entry.UserName, entry.ProviderName, entry.Message, entry.RemoteAddr}
}
