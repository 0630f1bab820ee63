// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// ErrRevert is a validation error. The operation that returns it is rolled back
// and the error is surfaced to the caller as is.
type ErrRevert struct {
	code    string
	message string
}

func New(code string) *ErrRevert {
	return &ErrRevert{
		code:    code,
		message: code,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Code returns the stable identifier of the revert reason.
func (e *ErrRevert) Code() string {
	return e.code
}

// Is matches reverts sharing the same code, so detailed reverts still match their sentinel.
func (e *ErrRevert) Is(target error) bool {
	var t *ErrRevert
	if !errors.As(target, &t) {
		return false
	}
	return t.code == e.code
}

// Withf returns a revert with the same code and a detailed message.
func (e *ErrRevert) Withf(format string, args ...any) *ErrRevert {
	return &ErrRevert{
		code:    e.code,
		message: e.code + ": " + fmt.Sprintf(format, args...),
	}
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// validation errors
var (
	ErrInvalidAmount                      = New("InvalidAmount")
	ErrZeroAddress                        = New("ZeroAddress")
	ErrEmptyArray                         = New("EmptyArray")
	ErrArrayLengthMismatch                = New("ArrayLengthMismatch")
	ErrInvalidValidatorID                 = New("InvalidValidatorId")
	ErrValidatorDoesNotExist              = New("ValidatorDoesNotExist")
	ErrValidatorAlreadyExists             = New("ValidatorAlreadyExists")
	ErrValidatorInactive                  = New("ValidatorInactive")
	ErrValidatorAlreadySlashed            = New("ValidatorAlreadySlashed")
	ErrValidatorNotSlashed                = New("ValidatorNotSlashed")
	ErrExceedsValidatorCapacity           = New("ExceedsValidatorCapacity")
	ErrNotValidatorAdmin                  = New("NotValidatorAdmin")
	ErrAdminAlreadyAssigned               = New("AdminAlreadyAssigned")
	ErrCommissionTooHigh                  = New("CommissionTooHigh")
	ErrInvalidMaxCommissionRate           = New("InvalidMaxCommissionRate")
	ErrInsufficientFunds                  = New("InsufficientFunds")
	ErrInsufficientCooledAndParkedBalance = New("InsufficientCooledAndParkedBalance")
	ErrNoRewardsToClaim                   = New("NoRewardsToClaim")
	ErrTokenDoesNotExist                  = New("TokenDoesNotExist")
	ErrTokenAlreadyExists                 = New("TokenAlreadyExists")
	ErrRewardRateExceedsMax               = New("RewardRateExceedsMax")
	ErrInvalidExpiration                  = New("InvalidExpiration")
	ErrSlashVoteDurationTooLong           = New("SlashVoteDurationTooLong")
	ErrCannotVoteForSelf                  = New("CannotVoteForSelf")
	ErrUnanimityNotReached                = New("UnanimityNotReached")
	ErrPendingClaimExists                 = New("PendingClaimExists")
	ErrNoPendingClaim                     = New("NoPendingClaim")
	ErrClaimNotReady                      = New("ClaimNotReady")
	ErrUnauthorized                       = New("Unauthorized")
	ErrInvalidParam                       = New("InvalidParam")
	ErrArithmeticOverflow                 = New("ArithmeticOverflow")
)
