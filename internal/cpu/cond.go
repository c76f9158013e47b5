package cpu

// ARMCondition is the 4-bit condition field in bits 31-28 of every ARM
// instruction (and implicitly AL for every THUMB instruction).
type ARMCondition uint32

const (
	CondEQ ARMCondition = 0x0
	CondNE ARMCondition = 0x1
	CondCS ARMCondition = 0x2
	CondCC ARMCondition = 0x3
	CondMI ARMCondition = 0x4
	CondPL ARMCondition = 0x5
	CondVS ARMCondition = 0x6
	CondVC ARMCondition = 0x7
	CondHI ARMCondition = 0x8
	CondLS ARMCondition = 0x9
	CondGE ARMCondition = 0xA
	CondLT ARMCondition = 0xB
	CondGT ARMCondition = 0xC
	CondLE ARMCondition = 0xD
	CondAL ARMCondition = 0xE
	CondNV ARMCondition = 0xF
)

// evalCondition checks a 4-bit condition field against CPSR flags.
func evalCondition(r *Registers, cond ARMCondition) bool {
	n, z, c, v := r.GetFlagN(), r.GetFlagZ(), r.GetFlagC(), r.GetFlagV()
	switch cond {
	case CondEQ:
		return z
	case CondNE:
		return !z
	case CondCS:
		return c
	case CondCC:
		return !c
	case CondMI:
		return n
	case CondPL:
		return !n
	case CondVS:
		return v
	case CondVC:
		return !v
	case CondHI:
		return c && !z
	case CondLS:
		return !c || z
	case CondGE:
		return n == v
	case CondLT:
		return n != v
	case CondGT:
		return !z && n == v
	case CondLE:
		return z || n != v
	case CondAL:
		return true
	default: // NV
		return false
	}
}
