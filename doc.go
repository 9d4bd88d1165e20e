/*
 * doc.go, part of msms-wrapper.
 *
 * Copyright 2026 The msms-wrapper authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

/*
Package msms runs the msms molecular surface program (M. F. Sanner) and reads
its results.

Given the coordinates and radii of a set of atoms, Run writes the msms input
in a temporary directory, runs msms with the options given, and reads the
vertex and face files it produces into a Surface. The temporary files are always
removed. Extract then gives the solvent-excluded and solvent-accessible areas
reported by msms, and the volume enclosed by the triangulated surface.
With the no_area option (or a -no_area extra flag) msms computes no areas,
and Extract fails with ErrInvalidInput.

	atoms, err := msms.NewAtomSet(coords, radii)
	...
	o := msms.DefaultOptions()
	o.Density(3.0)
	surf, err := msms.Run(context.Background(), atoms, o)
	...
	d, err := msms.Extract(surf)

msms itself must be obtained separately. It is looked for in the PATH,
unless the MSMS_COMMAND environment variable gives another command. Available
tells whether it can be found.

Errors can be compared with errors.Is against ErrNotAvailable, ErrInvalidInput,
ErrUnknownOption, ErrExecutionFailed, ErrMalformedOutput and ErrTimedOut. An
*Error also gives the output msms printed, or the file and line that
could not be read.

The volume is computed from the triangulation, so it is only meaningful for a
single closed surface. When msms is asked for all the surface components,
select one with Surface.Component before calling MeshVolume.
*/
package msms
