package dynamo

// DynamoDB attribute names used in key and condition expressions across repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	attrTagID       = "tag_id"
	attrActive      = "active"
	attrAdminID     = "admin_id"
	attrUsername    = "username"
	attrUserID      = "user_id"
	attrPhoneNumber = "phone_number"
	attrSessionID   = "session_id"
	attrUsed        = "used"
	attrExpiresAt   = "expires_at"
	attrUpdatedAt   = "updated_at"
)

const (
	indexUsername    = "username-index"
	indexPhoneNumber = "phone_number-index"
)
