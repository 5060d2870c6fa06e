package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Fishing session
	CodeAlreadyFishing Code = "ALREADY_FISHING"
	CodeNoSession      Code = "NO_SESSION"

	// Economy and inventory
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"
	CodeNothingToIdentify Code = "NOTHING_TO_IDENTIFY"
	CodeNothingToSell     Code = "NOTHING_TO_SELL"
	CodeNoIdentifiedFish  Code = "NO_IDENTIFIED_FISH"
	CodeUnknownItem       Code = "UNKNOWN_ITEM"
	CodeItemLocked        Code = "ITEM_LOCKED"

	// Names
	CodeInvalidName   Code = "INVALID_NAME"
	CodeNicknameTaken Code = "NICKNAME_TAKEN"

	// Guilds
	CodeGuildNameTaken Code = "GUILD_NAME_TAKEN"
	CodeGuildNotFound  Code = "GUILD_NOT_FOUND"
	CodeAlreadyInGuild Code = "ALREADY_IN_GUILD"
	CodeNotInGuild     Code = "NOT_IN_GUILD"

	// Quests
	CodeCatCooldown          Code = "CAT_COOLDOWN"
	CodeNoQuest              Code = "NO_QUEST"
	CodeQuestAlreadyAccepted Code = "QUEST_ALREADY_ACCEPTED"
	CodeQuestNotAccepted     Code = "QUEST_NOT_ACCEPTED"
	CodeNoMatchingFish       Code = "NO_MATCHING_FISH"

	// Consistency violations
	CodeNegativeQuantity   Code = "NEGATIVE_QUANTITY"
	CodeOrphanedMembership Code = "ORPHANED_MEMBERSHIP"

	// Storage
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
)

// Kind maps domain codes to their error kind.
func (c Code) Kind() Kind {
	switch c {
	case CodeNegativeQuantity,
		CodeOrphanedMembership:
		return KindConsistency
	case CodeStorageUnavailable,
		CodeUnknown:
		return KindStorage
	default:
		return KindUser
	}
}
