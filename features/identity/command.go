package identity

import (
	"github.com/AntonStoeckl/library-loans-go/lending"
)

const (
	OperationRegisterReader     = "register_reader"
	OperationRegisterLibrarian  = "register_librarian"
	OperationVerifyCredential   = "verify_credential"
	OperationChangeCredential   = "change_credential"
	OperationChangeReaderStatus = "change_reader_status"
	OperationChangeReaderZone   = "change_reader_zone"
	OperationGetPerson          = "get_person"
	OperationListReaders        = "list_readers"
	OperationListLibrarians     = "list_librarians"
)

// RegisterReaderCommand registers a reader. An empty Status registers the reader as ACTIVE.
type RegisterReaderCommand struct {
	Name     string               `json:"name"`
	Email    string               `json:"email"`
	Password string               `json:"password"`
	Address  string               `json:"address"`
	Zone     lending.Zone         `json:"zone"`
	Status   lending.ReaderStatus `json:"status,omitempty"`
}

// RegisterLibrarianCommand carries the input of RegisterLibrarian.
type RegisterLibrarianCommand struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	EmployeeNumber string `json:"employeeNumber"`
}

// ReaderQuery narrows ListReaders; zero fields do not filter.
type ReaderQuery struct {
	Status lending.ReaderStatus
	Zone   lending.Zone
	Text   string
}
