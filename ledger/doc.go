// Package ledger tracks screen-time goals and the money staked against
// them: a goal sets an app's daily limit, a wallet entry holds the stake,
// violations record limit breaches, and transactions record every movement
// of funds.
package ledger
