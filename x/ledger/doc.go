/*
Package ledger implements the account model that unique assets live in.

An asset class is a mint with a fixed supply. Unique assets are classes with
supply 1. Units of a class are held by accounts. Every account holds exactly
one class and is controlled by a single authority address. A transfer moves
units between two accounts of the same class and must be authorized by the
authority of the source account. The authority can be a signer or a program
derived authority, see x/escrow.

All balance changes go through the Controller.
*/
package ledger
