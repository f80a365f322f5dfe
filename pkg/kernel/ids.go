package kernel

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

type RecordID string

func NewRecordID(id string) RecordID { return RecordID(id) }
func (r RecordID) String() string    { return string(r) }
func (r RecordID) IsEmpty() bool     { return string(r) == "" }
