package provider

import "fmt"

// OpKind tags an Operation.
type OpKind int

const (
	OpInsert OpKind = iota + 1
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// BackRef is the index of an earlier insert in the same batch. When the
// batch is applied, the row id produced by that insert is substituted.
type BackRef int

// Selection restricts an update or delete to matching rows.
type Selection struct {
	Where string
	Args  []any
}

// Operation is one step of a batch.
//
// Values holds literal column values. BackRefs holds columns whose value is
// the result id of an earlier operation. A column must not appear in both.
type Operation struct {
	Kind      OpKind
	Target    Table
	Values    map[string]any
	BackRefs  map[string]BackRef
	Selection Selection
}

// Insert builds an insert of values into target.
func Insert(target Table, values map[string]any) Operation {
	return Operation{Kind: OpInsert, Target: target, Values: values}
}

// Update builds an update of the rows of target matching sel.
func Update(target Table, sel Selection, values map[string]any) Operation {
	return Operation{Kind: OpUpdate, Target: target, Values: values, Selection: sel}
}

// Delete builds a delete of the rows of target matching sel.
func Delete(target Table, sel Selection) Operation {
	return Operation{Kind: OpDelete, Target: target, Selection: sel}
}

// WithBackRef returns a copy of op whose column takes the result id of the
// operation at ref.
func (op Operation) WithBackRef(column string, ref BackRef) Operation {
	refs := make(map[string]BackRef, len(op.BackRefs)+1)
	for k, v := range op.BackRefs {
		refs[k] = v
	}
	refs[column] = ref
	op.BackRefs = refs
	return op
}

// Result is the outcome of one applied operation. ID is set for inserts;
// Count is the number of affected rows.
type Result struct {
	ID    int64
	Count int
}

// ByMimeType selects the data rows of one raw contact with the given kind.
func ByMimeType(rawContactID int64, mime MimeType) Selection {
	return Selection{
		Where: ColumnRawContactID + " = ? AND " + ColumnMimeType + " = ?",
		Args:  []any{rawContactID, string(mime)},
	}
}

// ValidateBatch checks the shape of ops before anything is applied: known
// kinds, non-empty selections for updates and deletes, and back references
// that point at an earlier insert.
func ValidateBatch(ops []Operation) error {
	if len(ops) == 0 {
		return &Error{Code: ErrorCodeInvalid, Message: "empty batch"}
	}
	for i, op := range ops {
		switch op.Kind {
		case OpInsert:
			if op.Selection.Where != "" {
				return invalidOp(i, op, "insert cannot carry a selection")
			}
		case OpUpdate:
			if len(op.Values) == 0 && len(op.BackRefs) == 0 {
				return invalidOp(i, op, "update sets no columns")
			}
			if op.Selection.Where == "" {
				return invalidOp(i, op, "update requires a selection")
			}
		case OpDelete:
			if op.Selection.Where == "" {
				return invalidOp(i, op, "delete requires a selection")
			}
			if len(op.Values) > 0 || len(op.BackRefs) > 0 {
				return invalidOp(i, op, "delete cannot set columns")
			}
		default:
			return invalidOp(i, op, "unknown kind")
		}
		if op.Target != TableRawContacts && op.Target != TableData {
			return invalidOp(i, op, fmt.Sprintf("unknown table %q", op.Target))
		}
		for column, ref := range op.BackRefs {
			if _, dup := op.Values[column]; dup {
				return invalidOp(i, op, fmt.Sprintf("column %q has both a value and a back reference", column))
			}
			if int(ref) < 0 || int(ref) >= i {
				return invalidOp(i, op, fmt.Sprintf("back reference %d for %q does not point at an earlier operation", ref, column))
			}
			if ops[ref].Kind != OpInsert {
				return invalidOp(i, op, fmt.Sprintf("back reference %d for %q points at a %s", ref, column, ops[ref].Kind))
			}
		}
	}
	return nil
}

func invalidOp(index int, op Operation, reason string) error {
	return &Error{
		Code:    ErrorCodeInvalid,
		Message: fmt.Sprintf("operation %d (%s %s): %s", index, op.Kind, op.Target, reason),
	}
}
