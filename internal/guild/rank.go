package guild

import "time"

type MemberRank int

const (
	RankNewcomer MemberRank = iota
	RankMember
	RankHookKeeper
	RankPondWarden
	RankEstuaryGuard
	RankVeteran
	RankLeader
)

func (r MemberRank) String() string {
	switch r {
	case RankLeader:
		return "Guild Leader"
	case RankVeteran:
		return "Guild Veteran"
	case RankEstuaryGuard:
		return "Estuary Guard"
	case RankPondWarden:
		return "Pond Warden"
	case RankHookKeeper:
		return "Hook Keeper"
	case RankMember:
		return "Guild Member"
	default:
		return "Guild Newcomer"
	}
}

// MembershipRank derives a cosmetic rank from how long a member has been in
// the guild. It is never stored.
func MembershipRank(isLeader bool, joinedAt, now time.Time) MemberRank {
	if isLeader {
		return RankLeader
	}
	if joinedAt.IsZero() {
		return RankNewcomer
	}
	d := now.Sub(joinedAt)
	switch {
	case d >= 30*24*time.Hour:
		return RankVeteran
	case d >= 72*time.Hour:
		return RankEstuaryGuard
	case d >= 48*time.Hour:
		return RankPondWarden
	case d >= 24*time.Hour:
		return RankHookKeeper
	case d >= time.Hour:
		return RankMember
	default:
		return RankNewcomer
	}
}
