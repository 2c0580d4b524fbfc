package board

// DebugMoveValidation gates the extra consistency assertions scattered
// through the search hot path (bitboard/Occupied mismatches, king-square
// corruption, stale move validation). Leave false outside of debugging a
// suspected move generation or make/unmake bug; the checks are cheap
// individually but run on every node. Toggled at runtime via the UCI
// "debug" setoption, so it is a var rather than a const.
var DebugMoveValidation = false
