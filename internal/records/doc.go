// Package records converts spreadsheet rows into normalized records.
//
// Every record gains a BarCode of the form "$<component code>$<Code>", where
// the component code comes from the remote ComponentCodes table. Hint row
// directives (int, none, ref:<table>:<column>) are parsed once and applied
// only when records are prepared for insert.
package records
