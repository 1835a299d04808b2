// Package stress implements the Boussinesq stress-bulb engine: the point-load
// kernel, the uniformly loaded rectangle (closed-form Newmark factor or direct
// numerical quadrature), the analysis grid, the field evaluator and the
// influence-depth search.
//
// Coordinates are in metres with the origin at the centre of the footprint on
// the ground surface, x along the width B, y along the length L and z positive
// downward. Stresses are in the units of the applied pressure (kPa).
package stress
