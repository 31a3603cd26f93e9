// Package dag orders task declarations so that every declaration is
// evaluated after the declarations it references.
//
// References are discovered statically from the traversals of each
// declaration's expressions (`task.<name>...`), so no expression has to be
// evaluated to know the order. Declarations that do not depend on each other
// keep their declaration order.
package dag
