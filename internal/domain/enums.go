package domain

// Level is the unit of observation a variable is measured at.
// Levels correspond to file suffixes in HRS data files (_R, _H, _P, ...).
type Level string

const (
	LevelHousehold     Level = "Household"
	LevelRespondent    Level = "Respondent"
	LevelJobs          Level = "Jobs"
	LevelPension       Level = "Pension"
	LevelSiblings      Level = "Siblings"
	LevelHHMemberChild Level = "HH Member Child"
	LevelToChild       Level = "To Child"
	LevelFromChild     Level = "From Child"
	LevelHelper        Level = "Helper"
	LevelPreload       Level = "Preload"
	LevelMasterCodes   Level = "Master Codes"
	LevelOther         Level = "Other"
)

func (l Level) String() string { return string(l) }

func (l Level) IsValid() bool {
	switch l {
	case LevelHousehold, LevelRespondent, LevelJobs, LevelPension, LevelSiblings,
		LevelHHMemberChild, LevelToChild, LevelFromChild, LevelHelper,
		LevelPreload, LevelMasterCodes, LevelOther:
		return true
	}
	return false
}

// VarType is the data type of a variable.
type VarType string

const (
	TypeCharacter VarType = "Character"
	TypeNumeric   VarType = "Numeric"
)

func (t VarType) String() string { return string(t) }

func (t VarType) IsValid() bool {
	return t == TypeCharacter || t == TypeNumeric
}

// Source identifies a document family.
type Source string

const (
	SourceCore     Source = "hrs_core_codebook"
	SourceExit     Source = "hrs_exit_codebook"
	SourcePostExit Source = "hrs_post_exit_codebook"
)

func (s Source) String() string { return string(s) }

func (s Source) IsValid() bool {
	switch s {
	case SourceCore, SourceExit, SourcePostExit:
		return true
	}
	return false
}

// Era partitions survey years into groups sharing one document grammar.
type Era string

const (
	EraLegacy Era = "legacy" // 1992-2004
	EraModern Era = "modern" // 2006-2022
)

func (e Era) String() string { return string(e) }

func (e Era) IsValid() bool { return e == EraLegacy || e == EraModern }

// EraForYear returns the era a survey year belongs to.
func EraForYear(year int) Era {
	if year <= 2004 {
		return EraLegacy
	}
	return EraModern
}
